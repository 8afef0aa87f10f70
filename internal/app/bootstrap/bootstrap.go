package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	keypadimport "quorum/contexts/assembly-voting/keypad-import"
	importpostgres "quorum/contexts/assembly-voting/keypad-import/adapters/postgres"
	votingservice "quorum/contexts/assembly-voting/voting-service"
	"quorum/contexts/assembly-voting/voting-service/adapters/device"
	votingpostgres "quorum/contexts/assembly-voting/voting-service/adapters/postgres"
	sqliteadapter "quorum/contexts/assembly-voting/voting-service/adapters/sqlite"
	workerapp "quorum/contexts/assembly-voting/voting-service/application/workers"
	votingports "quorum/contexts/assembly-voting/voting-service/ports"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server       *httpserver.Server
	postgres     *db.Postgres
	journal      *sqliteadapter.Journal
	broadcaster  workerapp.StatusBroadcaster
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	monitor      *workerapp.DeviceMonitor
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	var journal *sqliteadapter.Journal
	var journalPort votingports.ResultJournal
	if cfg.JournalPath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		journal, err = sqliteadapter.Open(ctx, cfg.JournalPath)
		cancel()
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		journalPort = journal
	}

	repo := votingpostgres.NewRepository(pg.DB, logger)
	deviceClient := device.New(cfg.DeviceBaseURL, cfg.DeviceTimeout)
	bus := messaging.NewStatusBus(logger)

	votingModule := votingservice.NewModule(votingservice.Dependencies{
		Device:    deviceClient,
		Votes:     repo,
		Directory: repo,
		Presence:  repo,
		Roster:    repo,
		Journal:   journalPort,
		Status:    bus,
		Clock:     votingpostgres.SystemClock{},
		Logger:    logger,
	})

	importRepo := importpostgres.NewRepository(pg.DB, logger)
	importModule := keypadimport.NewModule(keypadimport.Dependencies{
		Reader: importRepo,
		Writer: importRepo,
		IDGen:  importpostgres.UUIDGenerator{},
		Clock:  importpostgres.SystemClock{},
		Logger: logger,
	})

	server := httpserver.New(votingModule, importModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		journal:  journal,
		broadcaster: workerapp.StatusBroadcaster{
			Source:    votingModule.Coordinator,
			Publisher: bus,
			Logger:    logger,
		},
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	deviceClient := device.New(cfg.DeviceBaseURL, cfg.DeviceTimeout)

	return &WorkerApp{
		monitor: &workerapp.DeviceMonitor{
			Device: deviceClient,
			Logger: logger,
		},
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	go func() {
		ticker := time.NewTicker(a.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = a.broadcaster.RunOnce(ctx)
			}
		}
	}()

	return a.server.Start()
}

func (a *APIApp) Close() error {
	var firstErr error
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			firstErr = err
		}
	}
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.monitor.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
