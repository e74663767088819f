package logger

import (
	"os"

	"go.uber.org/zap"
)

// Logger is the logging interface used across the application
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// zapLogger implements Logger on top of zap's sugared logger
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a new Logger instance. Production encoding is used when
// APP_ENV=production, development encoding otherwise.
func NewLogger() Logger {
	var base *zap.Logger
	var err error

	if os.Getenv("APP_ENV") == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		base = zap.NewNop()
	}

	return &zapLogger{sugar: base.Sugar()}
}

// NewNop returns a Logger that discards everything; used in tests
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

// Info logs an informational message
func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Error logs an error message
func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Debug logs a debug message
func (l *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Warn logs a warning message
func (l *zapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}
