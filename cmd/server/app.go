package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "programtrack/internal/http"
	memberhandler "programtrack/internal/member/handler"
	memberservice "programtrack/internal/member/service"
	memberstore "programtrack/internal/member/store"
	"programtrack/internal/platform/config"
	"programtrack/internal/platform/logger"
	"programtrack/internal/platform/metrics"
	"programtrack/internal/platform/sqlite"
	programhandler "programtrack/internal/program/handler"
	programservice "programtrack/internal/program/service"
	programstore "programtrack/internal/program/store"
	"programtrack/internal/receipt/generator"
	receipthandler "programtrack/internal/receipt/handler"
	receiptservice "programtrack/internal/receipt/service"
)

// memberBackend is what both the member and program services need from the
// member tables.
type memberBackend interface {
	memberservice.MemberStore
	programservice.MemberTables
}

type app struct {
	cfg      config.Server
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	db       *sql.DB

	programs *programservice.Service
	members  *memberservice.Service
	receipts *receiptservice.Service
}

func newApp(ctx context.Context, cfg config.Server) (*app, error) {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a := &app{cfg: cfg, logger: log, registry: reg, metrics: m}

	var (
		programStore programservice.ProgramStore
		memberStore  memberBackend
	)
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.db = db
		programStore = programstore.NewSQLite(db)
		memberStore = memberstore.NewSQLite(db, cfg.DataDir)
	default:
		programStore = programstore.NewCSV(cfg.DataDir)
		memberStore = memberstore.NewCSV(cfg.DataDir)
	}

	a.programs = programservice.New(programStore, memberStore,
		programservice.WithLogger(log),
		programservice.WithMetrics(m),
	)
	a.members = memberservice.New(memberStore, programStore,
		memberservice.WithLogger(log),
		memberservice.WithMetrics(m),
	)
	gen := generator.New(generator.Config{
		DataDir:  cfg.DataDir,
		FontPath: cfg.FontPath,
		Compress: cfg.PDFCompression,
	}, programStore,
		generator.WithLogger(log),
		generator.WithMetrics(m),
	)
	a.receipts = receiptservice.New(cfg.DataDir, a.members, a.programs, gen,
		receiptservice.WithLogger(log),
	)

	log.Info("application initialised",
		"storage", cfg.Storage,
		"data_dir", cfg.DataDir,
	)
	return a, nil
}

func (a *app) handler() http.Handler {
	return httpapi.NewRouter(a.logger, a.metrics, a.registry,
		programhandler.New(a.programs, a.logger),
		memberhandler.New(a.members, a.logger, a.cfg.MaxUploadBytes),
		receipthandler.New(a.receipts, a.logger),
	)
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
