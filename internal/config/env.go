package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Billing is the configuration of the billing executable.
type Billing struct {
	WorkerPoolSize int           `env:"BILLING_WORKER_POOL_SIZE" envDefault:"4"`
	QueueBuffer    int           `env:"BILLING_QUEUE_BUFFER" envDefault:"100"`
	RenewalDelay   time.Duration `env:"BILLING_RENEWAL_DELAY" envDefault:"2s"`
	OTelEndpoint   string        `env:"BILLING_OTEL_ENDPOINT"`
	OTelSampling   float64       `env:"BILLING_OTEL_SAMPLE_RATIO" envDefault:"1"`
	ServiceName    string        `env:"BILLING_SERVICE_NAME" envDefault:"billing"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadBilling reads the billing configuration from the environment.
func LoadBilling() (Billing, error) {
	var cfg Billing
	if err := ParseEnv(&cfg); err != nil {
		return Billing{}, err
	}
	if cfg.WorkerPoolSize <= 0 {
		return Billing{}, fmt.Errorf("BILLING_WORKER_POOL_SIZE must be positive, got %d", cfg.WorkerPoolSize)
	}
	if cfg.QueueBuffer < 0 {
		return Billing{}, fmt.Errorf("BILLING_QUEUE_BUFFER must not be negative, got %d", cfg.QueueBuffer)
	}
	if cfg.OTelSampling < 0 || cfg.OTelSampling > 1 {
		return Billing{}, fmt.Errorf("BILLING_OTEL_SAMPLE_RATIO must be between 0 and 1, got %v", cfg.OTelSampling)
	}
	return cfg, nil
}
