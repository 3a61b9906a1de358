// Package config содержит логику чтения конфигурации витрины SoccerGear.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса витрины.
type Config struct {
	RunAddress        string        `env:"RUN_ADDRESS"`
	DatabaseURI       string        `env:"DATABASE_URI"`
	BackendAddress    string        `env:"BACKEND_ADDRESS"`
	CEPAddress        string        `env:"CEP_ADDRESS"`
	SessionSecret     string        `env:"SESSION_SECRET"`
	OrderPollInterval time.Duration `env:"ORDER_POLL_INTERVAL"`
	PromoPollInterval time.Duration `env:"PROMO_POLL_INTERVAL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envBackendAddress := cfg.BackendAddress
	envCEPAddress := cfg.CEPAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.BackendAddress, "r", "https://soccergear-backend.onrender.com", "commerce backend address")
	flag.StringVar(&cfg.CEPAddress, "c", "https://viacep.com.br", "postal code lookup address")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envBackendAddress != "" {
		cfg.BackendAddress = envBackendAddress
	}
	if envCEPAddress != "" {
		cfg.CEPAddress = envCEPAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "soccergear-secret"
	}
	if cfg.OrderPollInterval <= 0 {
		cfg.OrderPollInterval = 5 * time.Second
	}
	if cfg.PromoPollInterval <= 0 {
		cfg.PromoPollInterval = 2 * time.Hour
	}

	return cfg, nil
}
