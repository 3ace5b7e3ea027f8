package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"kiosk-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFileSource struct {
	mu       sync.Mutex
	files    []domain.FileInfo
	contents map[string]*domain.FileContent
	listErr  error

	// ignoreSince mimics a source whose server-side filtering is coarser
	// than the requested cutoff.
	ignoreSince bool
}

// List honors since the way the Drive source does: only files created after
// the cutoff come back.
func (f *fakeFileSource) List(_ context.Context, since time.Time) ([]domain.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.FileInfo, 0, len(f.files))
	for _, file := range f.files {
		if f.ignoreSince || file.CreatedTime.After(since) {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeFileSource) GetContent(_ context.Context, fileID string) (*domain.FileContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fc, ok := f.contents[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return fc, nil
}

type fakeProcessor struct {
	mu      sync.Mutex
	calls   []processedCall
	failIDs map[string]bool
}

type processedCall struct {
	content  string
	filename string
	link     string
}

func (p *fakeProcessor) ProcessFile(_ context.Context, content []byte, filename, link string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, processedCall{content: string(content), filename: filename, link: link})
	if p.failIDs[filename] {
		return errors.New("processing failed")
	}
	return nil
}

func (p *fakeProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newScannerFixture(files []domain.FileInfo, contents map[string]*domain.FileContent) (*Scanner, *fakeProcessor) {
	source := &fakeFileSource{files: files, contents: contents}
	processor := &fakeProcessor{failIDs: map[string]bool{}}
	scanner := NewScanner(source, processor, time.Minute, 90*time.Second, zap.NewNop())
	return scanner, processor
}

func TestRunCycleProcessesFreshFile(t *testing.T) {
	now := time.Now()
	files := []domain.FileInfo{{ID: "f1", Name: "export.csv", CreatedTime: now.Add(-10 * time.Second)}}
	contents := map[string]*domain.FileContent{
		"f1": {Content: "hello", Encoding: domain.EncodingUTF8, Link: "https://example.com/f1"},
	}
	scanner, processor := newScannerFixture(files, contents)

	scanner.runCycle(context.Background(), now)

	require.Equal(t, 1, processor.callCount())
	assert.Equal(t, "hello", processor.calls[0].content)
	assert.Equal(t, "export.csv", processor.calls[0].filename)
	assert.Equal(t, "https://example.com/f1", processor.calls[0].link)
}

func TestRunCycleDeduplicatesAcrossCycles(t *testing.T) {
	now := time.Now()
	files := []domain.FileInfo{{ID: "f1", Name: "export.csv", CreatedTime: now.Add(-10 * time.Second)}}
	contents := map[string]*domain.FileContent{
		"f1": {Content: "hello", Encoding: domain.EncodingUTF8},
	}
	scanner, processor := newScannerFixture(files, contents)

	scanner.runCycle(context.Background(), now)
	// Source keeps listing the same file; the processed set must absorb it.
	scanner.runCycle(context.Background(), now.Add(time.Minute))

	assert.Equal(t, 1, processor.callCount())
}

func TestRunCycleSkipsStaleFiles(t *testing.T) {
	now := time.Now()
	files := []domain.FileInfo{
		{ID: "old", Name: "old.csv", CreatedTime: now.Add(-5 * time.Minute)},
		{ID: "fresh", Name: "fresh.csv", CreatedTime: now.Add(-10 * time.Second)},
	}
	contents := map[string]*domain.FileContent{
		"old":   {Content: "old", Encoding: domain.EncodingUTF8},
		"fresh": {Content: "fresh", Encoding: domain.EncodingUTF8},
	}
	scanner, processor := newScannerFixture(files, contents)

	scanner.runCycle(context.Background(), now)

	require.Equal(t, 1, processor.callCount())
	assert.Equal(t, "fresh.csv", processor.calls[0].filename)
}

func TestRunCycleMarksStaleFilesFromCoarseSource(t *testing.T) {
	// A source with coarse server-side filtering can return files older
	// than the window; they must be marked, not processed.
	now := time.Now()
	source := &fakeFileSource{
		files: []domain.FileInfo{{ID: "old", Name: "old.csv", CreatedTime: now.Add(-5 * time.Minute)}},
		contents: map[string]*domain.FileContent{
			"old": {Content: "old", Encoding: domain.EncodingUTF8},
		},
		ignoreSince: true,
	}
	processor := &fakeProcessor{failIDs: map[string]bool{}}
	scanner := NewScanner(source, processor, time.Minute, 90*time.Second, zap.NewNop())

	scanner.runCycle(context.Background(), now)

	assert.Equal(t, 0, processor.callCount())
	assert.True(t, scanner.isProcessed("old"))
}

func TestRunCycleRetriesFailedFile(t *testing.T) {
	now := time.Now()
	files := []domain.FileInfo{{ID: "f1", Name: "export.csv", CreatedTime: now.Add(-10 * time.Second)}}
	contents := map[string]*domain.FileContent{
		"f1": {Content: "hello", Encoding: domain.EncodingUTF8},
	}
	scanner, processor := newScannerFixture(files, contents)
	processor.failIDs["export.csv"] = true

	scanner.runCycle(context.Background(), now)
	require.Equal(t, 1, processor.callCount())
	assert.False(t, scanner.isProcessed("f1"))

	// The failure was transient; the next cycle still sees the file within
	// the staleness window and retries it.
	processor.failIDs["export.csv"] = false
	scanner.runCycle(context.Background(), now.Add(30*time.Second))

	require.Equal(t, 2, processor.callCount())
	assert.True(t, scanner.isProcessed("f1"))

	// Once processed, further cycles leave it alone.
	scanner.runCycle(context.Background(), now.Add(time.Minute))
	assert.Equal(t, 2, processor.callCount())
}

func TestRunCycleFailedFileExpiresWithWindow(t *testing.T) {
	// Retries are bounded by the staleness filter: once the file ages out
	// of the window it is no longer listed, and the retries end.
	now := time.Now()
	files := []domain.FileInfo{{ID: "f1", Name: "export.csv", CreatedTime: now.Add(-10 * time.Second)}}
	contents := map[string]*domain.FileContent{
		"f1": {Content: "hello", Encoding: domain.EncodingUTF8},
	}
	scanner, processor := newScannerFixture(files, contents)
	processor.failIDs["export.csv"] = true

	scanner.runCycle(context.Background(), now)
	scanner.runCycle(context.Background(), now.Add(5*time.Minute))

	assert.Equal(t, 1, processor.callCount())
}

func TestRunCycleDecodesBase64Content(t *testing.T) {
	now := time.Now()
	raw := []byte{0x50, 0x4B, 0x03, 0x04, 0xFF}
	files := []domain.FileInfo{{ID: "f1", Name: "DataRecord_1.xlsx", CreatedTime: now.Add(-10 * time.Second)}}
	contents := map[string]*domain.FileContent{
		"f1": {
			Content:  base64.StdEncoding.EncodeToString(raw),
			Encoding: domain.EncodingBase64,
			Link:     "https://example.com/f1",
		},
	}
	scanner, processor := newScannerFixture(files, contents)

	scanner.runCycle(context.Background(), now)

	require.Equal(t, 1, processor.callCount())
	assert.Equal(t, string(raw), processor.calls[0].content)
}

func TestRunCycleBadBase64NotMarkedProcessed(t *testing.T) {
	now := time.Now()
	files := []domain.FileInfo{{ID: "f1", Name: "DataRecord_1.xlsx", CreatedTime: now.Add(-10 * time.Second)}}
	contents := map[string]*domain.FileContent{
		"f1": {Content: "not-base64!!", Encoding: domain.EncodingBase64},
	}
	scanner, processor := newScannerFixture(files, contents)

	scanner.runCycle(context.Background(), now)

	assert.Equal(t, 0, processor.callCount())
	assert.False(t, scanner.isProcessed("f1"))
}

func TestScannerStartStop(t *testing.T) {
	scanner, _ := newScannerFixture(nil, nil)

	require.True(t, scanner.Start(context.Background()))
	assert.True(t, scanner.Running())

	// Second Start is a no-op while running.
	assert.False(t, scanner.Start(context.Background()))

	scanner.Stop()
	assert.False(t, scanner.Running())

	// Stopping twice is harmless.
	scanner.Stop()

	// A stopped scanner can start again.
	require.True(t, scanner.Start(context.Background()))
	scanner.Stop()
}

func TestTriggerScanNeverBlocks(t *testing.T) {
	scanner, _ := newScannerFixture(nil, nil)
	// No loop is draining the channel; repeated triggers must coalesce
	// instead of blocking the caller.
	for i := 0; i < 5; i++ {
		scanner.TriggerScan()
	}
}
