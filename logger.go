package httpcache

import (
	"io"
	"log/slog"
	"sync"
)

var (
	logger   *slog.Logger
	loggerMu sync.Once
)

// SetLogger sets a custom slog.Logger instance to be used by the engine.
// If not set, the default slog logger is used.
//
// To stop logging, pass nil, which installs a logger whose handler
// writes to io.Discard.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
		return
	}
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GetLogger returns the configured logger, or the default slog logger
// if none has been set.
func GetLogger() *slog.Logger {
	loggerMu.Do(func() {
		if logger == nil {
			logger = slog.Default()
		}
	})
	return logger
}
