package service

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"kiosk-data/internal/domain"

	"go.uber.org/zap"
)

// FileSource lists and fetches device export files from an external folder.
// The Drive implementation lives in internal/drive; tests use in-memory fakes.
type FileSource interface {
	// List returns files created after since, oldest first.
	List(ctx context.Context, since time.Time) ([]domain.FileInfo, error)
	// GetContent downloads one file. Binary spreadsheet bytes come back
	// base64-encoded; text files come back as utf8.
	GetContent(ctx context.Context, fileID string) (*domain.FileContent, error)
}

// Scanner polls a FileSource for fresh device exports and feeds each one to
// the ingestion pipeline. Delivery is at-least-once: a file is marked
// processed only after ProcessFile succeeds, so failed files are retried on
// the next cycle.
type Scanner struct {
	source    FileSource
	processor FileProcessor
	logger    *zap.Logger

	interval  time.Duration
	staleness time.Duration

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	trigger   chan struct{}
	processed map[string]struct{}
}

func NewScanner(source FileSource, processor FileProcessor, interval, staleness time.Duration, logger *zap.Logger) *Scanner {
	return &Scanner{
		source:    source,
		processor: processor,
		logger:    logger,
		interval:  interval,
		staleness: staleness,
		trigger:   make(chan struct{}, 1),
		processed: make(map[string]struct{}),
	}
}

// Start launches the polling loop. Calling Start on a running scanner is a
// no-op and returns false.
func (s *Scanner) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx, s.done)
	s.logger.Info("Scanner started",
		zap.Duration("interval", s.interval),
		zap.Duration("staleness_window", s.staleness),
	)
	return true
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
// Stopping an idle scanner is a no-op.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("Scanner stopped")
}

// Running reports whether the polling loop is active.
func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerScan requests an immediate cycle ahead of the next tick. Never
// blocks; a trigger while one is already pending is coalesced.
func (s *Scanner) TriggerScan() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scanner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx, time.Now())
		case <-s.trigger:
			s.runCycle(ctx, time.Now())
		}
	}
}

// runCycle performs one list-and-process pass. now is injected so the
// staleness cutoff is testable without timers.
//
// Every cycle lists the full staleness window rather than only files newer
// than the previous pass. The processed set already absorbs duplicates, and
// a file whose processing failed stays visible to later cycles until the
// window expires, giving transient converter or store failures a retry.
func (s *Scanner) runCycle(ctx context.Context, now time.Time) {
	cutoff := now.Add(-s.staleness)

	files, err := s.source.List(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list source folder", zap.Error(err))
		return
	}

	for _, file := range files {
		if ctx.Err() != nil {
			return
		}
		if s.isProcessed(file.ID) {
			continue
		}
		if file.CreatedTime.Before(cutoff) {
			// Sources with coarse server-side filtering can still return
			// files older than the window. Mark them so they are not
			// re-evaluated every cycle.
			s.logger.Debug("Skipping stale file",
				zap.String("file_id", file.ID),
				zap.String("name", file.Name),
				zap.Time("created", file.CreatedTime),
			)
			s.markProcessed(file.ID)
			continue
		}
		s.processOne(ctx, file)
	}
}

// processOne fetches and ingests a single file. Errors are logged and leave
// the file unmarked so the next cycle retries it.
func (s *Scanner) processOne(ctx context.Context, file domain.FileInfo) {
	fc, err := s.source.GetContent(ctx, file.ID)
	if err != nil {
		s.logger.Error("Failed to download file",
			zap.String("file_id", file.ID),
			zap.String("name", file.Name),
			zap.Error(err),
		)
		return
	}

	content := []byte(fc.Content)
	if fc.Encoding == domain.EncodingBase64 {
		decoded, err := base64.StdEncoding.DecodeString(fc.Content)
		if err != nil {
			s.logger.Error("Failed to decode file content",
				zap.String("file_id", file.ID),
				zap.String("name", file.Name),
				zap.Error(err),
			)
			return
		}
		content = decoded
	}

	if err := s.processor.ProcessFile(ctx, content, file.Name, fc.Link); err != nil {
		s.logger.Error("Failed to process file",
			zap.String("file_id", file.ID),
			zap.String("name", file.Name),
			zap.Error(err),
		)
		return
	}
	s.markProcessed(file.ID)
}

func (s *Scanner) isProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[id]
	return ok
}

func (s *Scanner) markProcessed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[id] = struct{}{}
}
