package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/openinterpreter/oi/pkg/logger"
)

const (
	// LogFileEnvVar is the environment variable name for log file path
	LogFileEnvVar = "LOG_FILE"
	// LogLevelEnvVar is the environment variable name for log level
	LogLevelEnvVar = "LOG_LEVEL"
	// LogFormatEnvVar is the environment variable name for log format
	LogFormatEnvVar = "LOG_FORMAT"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "simple"
)

// initLogger installs the process logger from the environment.
// Output goes to stderr unless LOG_FILE is set. The returned cleanup closes
// the log file.
func initLogger() (*slog.Logger, func(), error) {
	logLevel := os.Getenv(LogLevelEnvVar)
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}
	logFormat := os.Getenv(LogFormatEnvVar)
	if logFormat == "" {
		logFormat = DefaultLogFormat
	}

	output := os.Stderr
	cleanup := func() {}
	if path := os.Getenv(LogFileEnvVar); path != "" {
		file, closeFn, err := logger.OpenLogFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		cleanup = closeFn
	}

	return logger.Init(logger.ParseLevel(logLevel), output, logFormat), cleanup, nil
}
