package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/phsym/console-slog"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"

	"github.com/zhouzirui/sakhi/backend/internal/config"
)

// Preinit installs a console logger so configuration errors are readable.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

// Init replaces the default logger according to cfg. The returned closer
// flushes the optional log file.
func Init(cfg config.LogConfig) (func() error, error) {
	level := ParseLevel(cfg.Level)

	router := slogmulti.Router().Add(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: level == slog.LevelDebug,
		Level:     level,
	}))

	closer := func() error { return nil }

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, oops.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		closer = file.Close

		router = router.Add(
			slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelWarn}),
			func(_ context.Context, r slog.Record) bool {
				return r.Level >= slog.LevelWarn
			},
		)
	}

	slog.SetDefault(slog.New(router.Handler()))
	return closer, nil
}

// ParseLevel maps a config level name to slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a logger tagged with the component name.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
