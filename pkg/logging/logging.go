// Package logging wraps zap for the engine process: one Logger per
// component (matching, fixingress, eventsink, ...), each line carrying
// the symbol and correlation id of the command being handled so a
// single order's path through ingress -> engine -> sinks can be
// grepped back together.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with context support.
type Logger struct {
	logger *zap.Logger
}

// LogLevel defines the logging level.
type LogLevel zapcore.Level

const (
	DEBUG LogLevel = LogLevel(zapcore.DebugLevel)
	INFO  LogLevel = LogLevel(zapcore.InfoLevel)
	WARN  LogLevel = LogLevel(zapcore.WarnLevel)
	ERROR LogLevel = LogLevel(zapcore.ErrorLevel)
	FATAL LogLevel = LogLevel(zapcore.FatalLevel)
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	loggerKey        contextKey = "logger"
)

func newZapLogger(level LogLevel) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

// New creates a root Logger at level, tagged with component (e.g.
// "matching", "fixingress", "eventsink.kafka").
func New(level LogLevel, component string) *Logger {
	return &Logger{logger: newZapLogger(level).With(zap.String("component", component))}
}

// Named returns a child logger scoped under an additional component
// segment, e.g. l.Named("ABC") for a per-symbol matcher logger.
func (l *Logger) Named(name string) *Logger {
	return &Logger{logger: l.logger.Named(name)}
}

// WithCorrelationID attaches a correlation id — typically a FIX
// ClOrdID or an assigned OrderId — to ctx for later retrieval by
// GetLogger.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return "no-correlation-id"
}

// GetLogger retrieves the Logger stashed in ctx by a prior call, or
// derives a fresh one from base carrying ctx's correlation id.
func (l *Logger) GetLogger(ctx context.Context) (*Logger, context.Context) {
	if cached, ok := ctx.Value(loggerKey).(*Logger); ok {
		return cached, ctx
	}
	scoped := &Logger{logger: l.logger.With(zap.String("correlation_id", correlationID(ctx)))}
	return scoped, context.WithValue(ctx, loggerKey, scoped)
}

func (l *Logger) log(level LogLevel, msg string, fields ...zap.Field) {
	switch level {
	case DEBUG:
		l.logger.Debug(msg, fields...)
	case INFO:
		l.logger.Info(msg, fields...)
	case WARN:
		l.logger.Warn(msg, fields...)
	case ERROR:
		l.logger.Error(msg, fields...)
	case FATAL:
		l.logger.Fatal(msg, fields...)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.log(DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.log(INFO, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.log(WARN, msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.log(ERROR, msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.log(FATAL, msg, fields...) }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}
