// Package logging builds the [log/slog] logger of odoo2mod from the
// configuration and carries it through the pipeline on the context.
//
// Three formats are supported: logfmt-style text, JSON for machine
// consumption, and a coloured human format rendered by tint. Records are
// always logged through [RecordAttr] so every format groups the id and type
// of the record a message is about.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/record"
)

type ctxKey struct{}

// Setup builds the logger for cfg writing to stderr and installs it as the
// slog default.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter is Setup writing to w.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := slog.New(NewHandler(cfg, w))
	slog.SetDefault(logger)

	return logger
}

// NewHandler returns the handler selected by cfg.LogFormat.
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	level := ParseLevel(cfg.EffectiveLogLevel())

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case config.LogFormatPretty:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a configured level name to its slog level. Unknown
// names map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RecordAttr identifies a record in a log line as record.id and
// record.type.
func RecordAttr(id string, t record.Type) slog.Attr {
	return slog.Group("record",
		slog.String("id", id),
		slog.String("type", t.String()),
	)
}

// Err wraps err so the pretty format highlights it. Other formats render
// the error message.
func Err(err error) slog.Attr {
	return tint.Err(err)
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger carried by ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
