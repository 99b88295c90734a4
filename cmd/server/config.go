package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type config struct {
	Addr          string `env:"TACTICORE_ADDR" envDefault:":9901"`
	DBDSN         string `env:"TACTICORE_DB_DSN"`
	MigrationsDir string `env:"TACTICORE_MIGRATIONS_DIR" envDefault:"migrations"`
	// JournalPerSession bounds the in-memory journal when no DSN is set.
	JournalPerSession int `env:"TACTICORE_JOURNAL_PER_SESSION" envDefault:"500"`
	// JournalTimeout bounds each background journal write.
	JournalTimeout time.Duration `env:"TACTICORE_JOURNAL_TIMEOUT" envDefault:"250ms"`

	PredictionURL     string        `env:"TACTICORE_PREDICTION_URL"`
	PredictionTimeout time.Duration `env:"TACTICORE_PREDICTION_TIMEOUT" envDefault:"100ms"`
	ReasoningURL      string        `env:"TACTICORE_REASONING_URL"`
	ReasoningTimeout  time.Duration `env:"TACTICORE_REASONING_TIMEOUT" envDefault:"5m"`
	ReasoningInterval time.Duration `env:"TACTICORE_REASONING_MIN_INTERVAL" envDefault:"60s"`
	RemoteRPS         float64       `env:"TACTICORE_REMOTE_RPS" envDefault:"20"`
	RemoteBurst       int           `env:"TACTICORE_REMOTE_BURST"`

	TuningFile   string `env:"TACTICORE_TUNING_FILE"`
	LogLevel     string `env:"TACTICORE_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"TACTICORE_LOG_FORMAT" envDefault:"json"`
	OTelEndpoint string `env:"TACTICORE_OTEL_ENDPOINT"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
