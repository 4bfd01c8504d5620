package config

import (
	"os"
	"strconv"
	"time"
)

type ClientConfig struct {
	RequestTimeout time.Duration
}

func NewClientConfig() *ClientConfig {
	timeoutSec, err := strconv.Atoi(os.Getenv("TESTRAIL_TIMEOUT_SEC"))
	if err != nil || timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &ClientConfig{
		RequestTimeout: time.Duration(timeoutSec) * time.Second,
	}
}
