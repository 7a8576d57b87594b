package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process configuration. Values come from the environment,
// optionally seeded from a local .env file.
type Config struct {
	Port        string        `env:"PORT"         envDefault:"8080"`
	CatalogPath string        `env:"CATALOG_PATH" envDefault:"catalog.json"`
	CatalogDSN  string        `env:"CATALOG_DSN"`
	OrdersPath  string        `env:"ORDERS_PATH"  envDefault:"orders.jsonl"`
	SessionTTL  time.Duration `env:"SESSION_TTL"  envDefault:"30m"`
	AgentToken  string        `env:"AGENT_TOKEN"`
}

// Load reads .env when present and parses the environment. A missing .env
// is fine; production sets real environment variables.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
