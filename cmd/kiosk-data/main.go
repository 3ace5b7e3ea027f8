package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kiosk-data/internal/config"
	"kiosk-data/internal/database"
	"kiosk-data/internal/domain"
	"kiosk-data/internal/drive"
	httpapi "kiosk-data/internal/http"
	"kiosk-data/internal/mqtt"
	"kiosk-data/internal/repository"
	"kiosk-data/internal/service"
	"kiosk-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := config.Load()

	logger := buildLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store: Redis when reachable, in-process otherwise (dev).
	var kv store.KV
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err == nil {
		kv = store.NewRedisKV(redisClient)
	} else {
		logger.Warn("Redis unavailable, using in-memory session store", zap.Error(err))
		kv = store.NewMemoryKV()
	}

	// Persistence: Postgres when enabled and reachable, memory repos otherwise.
	var (
		db               *sql.DB
		patientsRepo     repository.PatientsRepository
		checkupsRepo     repository.CheckupsRepository
		measurementsRepo repository.MeasurementsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for kiosk-data")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		patientsRepo = repository.NewPostgresPatientsRepository(db)
		checkupsRepo = repository.NewPostgresCheckupsRepository(db)
		measurementsRepo = repository.NewPostgresMeasurementsRepository(db)
	} else {
		memPatients := repository.NewMemoryPatientsRepo()
		// Dev bootstrap: one seeded patient so the kiosk flow is usable
		// without a database.
		if os.Getenv("SEED_PATIENT") != "false" {
			memPatients.AddPatient(domain.Patient{
				ID:    "00000000-0000-0000-0000-000000000001",
				Email: "demo@kiosk.local",
				Name:  "Demo Patient",
			})
		}
		patientsRepo = memPatients
		checkupsRepo = repository.NewMemoryCheckupsRepo()
		measurementsRepo = repository.NewMemoryMeasurementsRepo()
	}

	sessions := service.NewSessionService(kv, patientsRepo)
	converter := service.NewConverterClient(cfg.Converter.BaseURL, cfg.Converter.Timeout, logger)
	dataFilter := service.NewDataFilterService(sessions, checkupsRepo, measurementsRepo, converter, logger)

	// Background scanner against the Drive folder (optional).
	var scanner *service.Scanner
	if cfg.Drive.Enabled {
		source, err := drive.NewSource(ctx, drive.Config{
			FolderID:     cfg.Drive.FolderID,
			ClientID:     cfg.Drive.ClientID,
			ClientSecret: cfg.Drive.ClientSecret,
			RefreshToken: cfg.Drive.RefreshToken,
		})
		if err != nil {
			logger.Fatal("Failed to create drive source", zap.Error(err))
		}
		scanner = service.NewScanner(source, dataFilter, cfg.Scanner.Interval, cfg.Scanner.Staleness, logger)
		scanner.Start(ctx)
	}

	// MQTT scan trigger (optional, needs the scanner).
	var (
		mqttClient *mqtt.Client
		broker     *mqtt.ScanTriggerBroker
	)
	if cfg.MQTT.Enabled && scanner != nil {
		c, err := mqtt.NewClient(cfg.MQTT, logger)
		if err != nil {
			logger.Warn("MQTT broker unavailable, scan triggers disabled", zap.Error(err))
		} else {
			mqttClient = c
			broker = mqtt.NewScanTriggerBroker(scanner, cfg.MQTT.Topic, logger)
			if err := broker.Start(mqttClient); err != nil {
				logger.Warn("Failed to start scan trigger broker", zap.Error(err))
			}
		}
	}

	router := httpapi.NewRouter(logger)
	router.RegisterSessionRoutes(httpapi.NewSessionHandler(sessions, logger))
	router.RegisterHealthDataRoutes(
		httpapi.NewHealthDataHandler(dataFilter, logger),
		httpapi.NewHistoryHandler(sessions, checkupsRepo, measurementsRepo, logger),
	)
	if scanner != nil {
		router.RegisterScannerRoutes(httpapi.NewScannerHandler(ctx, scanner, logger))
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if scanner != nil {
		scanner.Stop()
	}
	if mqttClient != nil {
		// Unsubscribe before dropping the connection so the broker stops
		// cleanly instead of with the transport.
		if broker != nil {
			_ = broker.Stop(mqttClient)
		}
		mqttClient.Disconnect()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

func buildLogger(level, format string) *zap.Logger {
	lvl := zapcore.InfoLevel
	_ = lvl.Set(level)

	zapCfg := zap.NewProductionConfig()
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}
