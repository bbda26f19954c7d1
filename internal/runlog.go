package internal

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	runLogger     *log.Logger
	runLoggerOnce sync.Once
	runLogEnabled bool
)

// initRunLogger opens the append-only run log under logDir
func initRunLogger(logDir string, enabled bool) {
	runLogEnabled = enabled

	if !enabled {
		return
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		runLogEnabled = false
		return
	}

	logPath := filepath.Join(logDir, "run.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		runLogEnabled = false
		return
	}

	runLogger = log.New(logFile, "", log.LstdFlags|log.Lmicroseconds)
}

// InitRunLogging initializes the run log based on config
func InitRunLogging(config *Config) {
	runLoggerOnce.Do(func() {
		initRunLogger(config.CacheDir, config.LogEnabled)
	})
}

// RunLogPath returns where the run log is written for config
func RunLogPath(config *Config) string {
	return filepath.Join(config.CacheDir, "run.log")
}

func runLogf(level, format string, args ...any) {
	if !runLogEnabled || runLogger == nil {
		return
	}

	runLogger.Printf("[%s] "+format, append([]any{level}, args...)...)
}

// RunLogInfo logs an info message
func RunLogInfo(format string, args ...any) {
	runLogf("INFO", format, args...)
}

// RunLogWarn logs a warning
func RunLogWarn(format string, args ...any) {
	runLogf("WARN", format, args...)
}

// RunLogError logs an error message
func RunLogError(format string, args ...any) {
	runLogf("ERROR", format, args...)
}

// RunLogDebug logs a debug message
func RunLogDebug(format string, args ...any) {
	runLogf("DEBUG", format, args...)
}
