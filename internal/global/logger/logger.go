package logger

import "gitlab.com/casesync.net/internal/adapter/logging"

// Logger is the process-wide logger used by the command line driver.
var Logger = logging.NewZapLogger()

// SetLevel replaces the process-wide logger with one filtered at the named level.
func SetLevel(name string) {
	Logger = logging.NewZapLoggerWithLevel(logging.ParseLevel(name))
}

func Error(msg string, args ...interface{}) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}
