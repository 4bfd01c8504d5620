package config

import "os"

// PostgresConfig is optional; an empty Url disables the tag-action ledger.
type PostgresConfig struct {
	Url string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url: os.Getenv("DATABASE_URL"),
	}
}

func (c *PostgresConfig) Enabled() bool {
	return c.Url != ""
}
