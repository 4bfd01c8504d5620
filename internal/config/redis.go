package config

import (
	"os"
	"strconv"
	"time"
)

// RedisConfig is optional; an empty Url keeps suite resolution in-process.
type RedisConfig struct {
	DB       int
	Url      string
	Password string
	LockWait time.Duration
}

func NewRedisConfig() *RedisConfig {
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		db = 0
	}
	waitSec, err := strconv.Atoi(os.Getenv("REDIS_LOCK_WAIT_SEC"))
	if err != nil || waitSec <= 0 {
		waitSec = 10
	}
	return &RedisConfig{
		DB:       db,
		Url:      os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		LockWait: time.Duration(waitSec) * time.Second,
	}
}

func (c *RedisConfig) Enabled() bool {
	return c.Url != ""
}
