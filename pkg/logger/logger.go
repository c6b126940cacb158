// Package logger provides structured logging for quizstake services.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry with service-scoped fields.
type Logger struct {
	entry *logrus.Entry
}

// Config holds logger configuration.
type Config struct {
	Service string
	Level   string // debug, info, warn, error
	Format  string // json or text
	Output  io.Writer
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	l := logrus.New()

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	entry := l.WithField("service", cfg.Service)
	return &Logger{entry: entry}
}

// NewDefault creates an info-level text logger for the named service.
func NewDefault(service string) *Logger {
	return New(Config{Service: service, Level: "info"})
}

// WithField returns a logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// WithContext returns a logger bound to the given context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{entry: l.entry.WithContext(ctx)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *Logger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
