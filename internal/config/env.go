package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RunnerSettings are the process-level settings of the seeder binary. They
// come from the environment; command-line flags override them.
type RunnerSettings struct {
	Workers       int    `env:"TRACKSEED_WORKERS" envDefault:"4"`
	QueueDepth    int    `env:"TRACKSEED_QUEUE_DEPTH" envDefault:"64"`
	DBPath        string `env:"TRACKSEED_DB_PATH" envDefault:"seeds.db"`
	MetricsListen string `env:"TRACKSEED_METRICS_LISTEN"`
}

// LoadRunnerSettings reads RunnerSettings from the process environment.
func LoadRunnerSettings() (RunnerSettings, error) {
	return parseRunnerSettings(env.Options{})
}

func parseRunnerSettings(opts env.Options) (RunnerSettings, error) {
	var s RunnerSettings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the settings are usable.
func (s RunnerSettings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	if s.QueueDepth < 1 {
		return fmt.Errorf("queue depth must be at least 1, got %d", s.QueueDepth)
	}
	if s.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	return nil
}
