package main

import (
	"os"

	logger2 "gitlab.com/casesync.net/internal/global/logger"
)

// version can be set during build with -ldflags
var version = "dev"

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		logger2.Error("Command failed", "error", err)
		_ = logger2.Logger.Sync()
		os.Exit(1)
	}
}
