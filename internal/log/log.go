// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// New builds a zap logger: development encoding with debug level when debug
// is set, JSON production encoding otherwise
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment(zap.AddCallerSkip(1))
	}
	return zap.NewProduction(zap.AddCallerSkip(1))
}

// Init initializes the package-level logger
func Init(debug bool) error {
	zapLogger, err := New(debug)
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	if log == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// Package-level convenience functions

func Debugf(template string, args ...interface{}) {
	GetSugaredLogger().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	GetSugaredLogger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	GetSugaredLogger().Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	GetSugaredLogger().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	GetSugaredLogger().Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	GetSugaredLogger().Fatalf(template, args...)
	os.Exit(1)
}
