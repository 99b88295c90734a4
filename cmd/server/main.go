package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/rs/zerolog/log"

	httpadapter "tacticore/internal/adapter/http"
	metricsinmem "tacticore/internal/adapter/metrics/inmemory"
	"tacticore/internal/adapter/remote"
	gormrepo "tacticore/internal/adapter/repo/gorm"
	memrepo "tacticore/internal/adapter/repo/memory"
	"tacticore/internal/adapter/telemetry"
	"tacticore/internal/adapter/tuning"
	"tacticore/internal/app/coordinator"
	"tacticore/internal/app/dispatch"
	"tacticore/internal/app/ports"
	"tacticore/internal/app/replay"
	"tacticore/internal/app/status"
	"tacticore/internal/domain/decision"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat, nil)

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "tacticore", version, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	h, closeEngine, err := buildHandler(ctx, cfg, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("build decision engine")
	}

	s := server.Default(server.WithHostPorts(cfg.Addr))
	s.OnShutdown = append(s.OnShutdown, func(ctx context.Context) {
		if err := closeEngine(ctx); err != nil {
			log.Warn().Err(err).Msg("flush decision journal")
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("flush traces")
		}
	})
	h.RegisterRoutes(s)

	log.Info().
		Str("addr", cfg.Addr).
		Str("version", version).
		Bool("prediction", cfg.PredictionURL != "").
		Bool("reasoning", cfg.ReasoningURL != "").
		Bool("postgres_journal", cfg.DBDSN != "").
		Msg("tacticore listening")
	s.Spin()
}

// buildHandler wires the engine. The returned func flushes the decision
// journal and must run on shutdown.
func buildHandler(ctx context.Context, cfg config, startedAt time.Time) (httpadapter.Handler, func(context.Context) error, error) {
	t, err := tuning.Load(cfg.TuningFile)
	if err != nil {
		return httpadapter.Handler{}, nil, err
	}
	if cfg.ReasoningInterval > 0 {
		t.Strategic.MinInterval = cfg.ReasoningInterval
	}
	if err := t.Validate(); err != nil {
		return httpadapter.Handler{}, nil, err
	}

	remotes, statusRemotes, err := buildRemotes(cfg)
	if err != nil {
		return httpadapter.Handler{}, nil, err
	}
	journal, err := buildJournal(ctx, cfg)
	if err != nil {
		return httpadapter.Handler{}, nil, err
	}

	// The registry is validated once here so a bad build aborts startup.
	probe, err := coordinator.NewDefaultManager(t, nil)
	if err != nil {
		return httpadapter.Handler{}, nil, fmt.Errorf("coordinator registry: %w", err)
	}

	recorder := metricsinmem.NewRecorder()
	dispatcher, err := dispatch.New(dispatch.Config{
		Factory:        dispatch.NewPipelineFactory(t, remotes),
		Metrics:        recorder,
		Journal:        journal,
		JournalTimeout: cfg.JournalTimeout,
	})
	if err != nil {
		return httpadapter.Handler{}, nil, err
	}

	return httpadapter.Handler{
		Decider: dispatcher,
		StatusUC: status.UseCase{
			Remotes:      statusRemotes,
			Coordinators: probe.Names(),
			Sessions:     dispatcher,
			Version:      version,
			StartedAt:    startedAt,
			Now:          time.Now,
		},
		ReplayUC: replay.UseCase{Journal: journal},
		Metrics:  recorder,
	}, dispatcher.Close, nil
}

func buildRemotes(cfg config) (dispatch.Remotes, []status.Remote, error) {
	budget := remote.NewBudget(cfg.RemoteRPS, cfg.RemoteBurst)
	out := dispatch.Remotes{
		PredictionTimeout: cfg.PredictionTimeout,
		ReasoningTimeout:  cfg.ReasoningTimeout,
	}
	statusRemotes := []status.Remote{
		{Stage: string(decision.StageDeliberative)},
		{Stage: string(decision.StageStrategic)},
	}
	if cfg.PredictionURL != "" {
		c, err := remote.NewClient(remote.Config{Name: "prediction", BaseURL: cfg.PredictionURL, Path: remote.PredictPath, Limiter: budget})
		if err != nil {
			return dispatch.Remotes{}, nil, err
		}
		out.Prediction = c
		statusRemotes[0].Client = c
	}
	if cfg.ReasoningURL != "" {
		c, err := remote.NewClient(remote.Config{Name: "reasoning", BaseURL: cfg.ReasoningURL, Path: remote.QueryPath, Limiter: budget})
		if err != nil {
			return dispatch.Remotes{}, nil, err
		}
		out.Reasoning = c
		statusRemotes[1].Client = c
	}
	return out, statusRemotes, nil
}

func buildJournal(ctx context.Context, cfg config) (ports.DecisionJournal, error) {
	if cfg.DBDSN == "" {
		return memrepo.NewDecisionRecordRepo(cfg.JournalPerSession), nil
	}
	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return gormrepo.NewDecisionRecordRepo(db), nil
}
