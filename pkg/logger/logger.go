// Package logger holds the process-wide logrus logger.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Key constants
const (
	VersionKey = "version"
	TraceKey   = "trace_id"
	SpanKey    = "span_id"
)

// Config selects level, format and output of the logger
type Config struct {
	Level  string
	Format string
	Output string
}

// Logger wraps logrus with a version field and trace correlation
type Logger struct {
	*logrus.Logger
	version string
}

var (
	stdLogger *Logger
	once      sync.Once
)

// StdLogger returns the single logger instance
func StdLogger() *Logger {
	once.Do(func() {
		stdLogger = &Logger{
			Logger: logrus.New(),
		}
		stdLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return stdLogger
}

// Init applies c to the logger. An unknown level falls back to info.
func (l *Logger) Init(c Config) {
	level, err := logrus.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch c.Output {
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		l.SetOutput(os.Stdout)
	}
}

// SetVersion sets the version attached to every entry
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields[TraceKey] = sc.TraceID().String()
			fields[SpanKey] = sc.SpanID().String()
		}
	}

	if l.version != "" {
		fields[VersionKey] = l.version
	}

	return l.WithFields(fields)
}

// Init configures the standard logger
func Init(c Config) { StdLogger().Init(c) }

// SetVersion sets the version on the standard logger
func SetVersion(v string) { StdLogger().SetVersion(v) }

// SetOutput sets the output destination for the standard logger
func SetOutput(out io.Writer) { StdLogger().SetOutput(out) }

// WithContext returns an entry carrying trace ids from ctx
func WithContext(ctx context.Context) *logrus.Entry {
	return StdLogger().entryFromContext(ctx)
}

// WithFields returns an entry with the given fields
func WithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	return StdLogger().entryFromContext(ctx).WithFields(fields)
}

// Debugf logs debug message with format
func Debugf(ctx context.Context, format string, args ...any) {
	StdLogger().entryFromContext(ctx).Debugf(format, args...)
}

// Infof logs info message with format
func Infof(ctx context.Context, format string, args ...any) {
	StdLogger().entryFromContext(ctx).Infof(format, args...)
}

// Warnf logs warn message with format
func Warnf(ctx context.Context, format string, args ...any) {
	StdLogger().entryFromContext(ctx).Warnf(format, args...)
}

// Errorf logs error message with format
func Errorf(ctx context.Context, format string, args ...any) {
	StdLogger().entryFromContext(ctx).Errorf(format, args...)
}
