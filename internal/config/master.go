package config

import "os"

type AppConfig struct {
	DebugMode      bool
	TestRail       *TestRailConfig
	ClientConfig   *ClientConfig
	CorpusConfig   *CorpusConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		TestRail:       NewTestRailConfig(),
		ClientConfig:   NewClientConfig(),
		CorpusConfig:   NewCorpusConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
	}
}
