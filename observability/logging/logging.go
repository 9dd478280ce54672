package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures structured JSON logging for the process and returns the
// base logger. Log lines carry the service name and, when set, the
// environment label. The handler remaps the default keys to the
// severity/message/timestamp names our log pipeline expects.
func Setup(service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				return slog.Attr{Key: "timestamp", Value: attr.Value}
			case slog.LevelKey:
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	})

	args := []any{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		args = append(args, slog.String("env", env))
	}

	base := slog.New(handler).With(args...)
	slog.SetDefault(base)
	return base
}
