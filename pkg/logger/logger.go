// Package logger provides the structured logger used across zapbot.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CorrelationIDFieldKey is the field key used for correlation IDs in log entries
const CorrelationIDFieldKey = "correlation_id"

type contextKey string

const correlationIDContextKey contextKey = "correlation_id"

// LogField is a single structured key/value pair. Values are pre-rendered strings.
type LogField struct {
	Key   string
	Value string
}

// Logger is the logging contract handed to every component.
type Logger interface {
	Debug(msg string, fields ...LogField)
	Info(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	Error(msg string, fields ...LogField)
	WithFields(fields ...LogField) Logger
	WithCorrelationID(id string) Logger
}

// Config represents logger configuration
type Config struct {
	Level   Level
	Format  string    // "json" (default) or "text"
	Service string    // added as the "service" field when set
	Output  io.Writer // defaults to os.Stdout
}

type logger struct {
	entry  *logrus.Logger
	fields []LogField
}

// NewLogger creates a logrus-backed Logger from the given configuration.
func NewLogger(config Config) Logger {
	l := logrus.New()

	if config.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	l.SetOutput(out)
	l.SetLevel(config.Level.logrusLevel())

	var fields []LogField
	if config.Service != "" {
		fields = append(fields, StringField("service", config.Service))
	}

	return &logger{entry: l, fields: fields}
}

// NewNopLogger returns a Logger that discards everything. Handy in tests.
func NewNopLogger() Logger {
	return NewLogger(Config{Level: ErrorLevel, Output: io.Discard})
}

// WithFields returns a child logger carrying the extra fields; the receiver is unchanged.
func (l *logger) WithFields(fields ...LogField) Logger {
	merged := make([]LogField, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{entry: l.entry, fields: merged}
}

func (l *logger) WithCorrelationID(id string) Logger {
	return l.WithFields(CorrelationIDField(id))
}

func (l *logger) Debug(msg string, fields ...LogField) { l.log(logrus.DebugLevel, msg, fields) }
func (l *logger) Info(msg string, fields ...LogField)  { l.log(logrus.InfoLevel, msg, fields) }
func (l *logger) Warn(msg string, fields ...LogField)  { l.log(logrus.WarnLevel, msg, fields) }
func (l *logger) Error(msg string, fields ...LogField) { l.log(logrus.ErrorLevel, msg, fields) }

func (l *logger) log(level logrus.Level, msg string, fields []LogField) {
	if !l.entry.IsLevelEnabled(level) {
		return
	}

	data := make(logrus.Fields, len(l.fields)+len(fields))
	for _, f := range l.fields {
		data[f.Key] = f.Value
	}
	// call-site fields win over inherited ones
	for _, f := range fields {
		data[f.Key] = f.Value
	}

	l.entry.WithFields(data).Log(level, msg)
}

// StringField returns a LogField for a string value.
func StringField(key, value string) LogField {
	return LogField{Key: key, Value: value}
}

// IntField returns a LogField for an integer value.
func IntField(key string, value int) LogField {
	return LogField{Key: key, Value: strconv.Itoa(value)}
}

// BoolField returns a LogField for a boolean value.
func BoolField(key string, value bool) LogField {
	return LogField{Key: key, Value: strconv.FormatBool(value)}
}

// DurationField returns a LogField for a time.Duration value.
func DurationField(key string, value time.Duration) LogField {
	return LogField{Key: key, Value: value.String()}
}

// ErrorField returns a LogField for an error value.
func ErrorField(err error) LogField {
	if err == nil {
		return LogField{Key: "error", Value: "<nil>"}
	}
	return LogField{Key: "error", Value: err.Error()}
}

// Field renders any value into a LogField.
func Field[T any](key string, value T) LogField {
	return LogField{Key: key, Value: render(value)}
}

func render(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// CorrelationIDField returns a LogField for a correlation ID.
func CorrelationIDField(id string) LogField {
	return StringField(CorrelationIDFieldKey, id)
}

// HTTPMethodField returns a LogField for an HTTP method.
func HTTPMethodField(method string) LogField {
	return StringField("http_method", method)
}

// HTTPPathField returns a LogField for an HTTP path.
func HTTPPathField(path string) LogField {
	return StringField("http_path", path)
}

// HTTPStatusField returns a LogField for an HTTP status code.
func HTTPStatusField(status int) LogField {
	return IntField("http_status", status)
}

// ClientIPField returns a LogField for a client IP address.
func ClientIPField(ip string) LogField {
	return StringField("client_ip", ip)
}

// WithCorrelationIDContext stores a correlation ID in the context.
func WithCorrelationIDContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, correlationID)
}

// GetCorrelationIDFromContext returns the correlation ID stored in ctx, or "".
func GetCorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

// EnsureCorrelationID returns ctx with a correlation ID, generating one when missing.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := GetCorrelationIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return WithCorrelationIDContext(ctx, id), id
}

// GetLoggerFromContext returns base enriched with the context's correlation ID, if any.
func GetLoggerFromContext(ctx context.Context, base Logger) Logger {
	if id := GetCorrelationIDFromContext(ctx); id != "" {
		return base.WithCorrelationID(id)
	}
	return base
}
