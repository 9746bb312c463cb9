package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates the run logger: text on stderr and, if logFile is set, JSON appended to logFile.
// The returned function closes the log file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	if logFile == "" {
		return newLogger(os.Stderr, nil, level), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := newLogger(os.Stderr, nil, level)
		logger.Error("failed to open log file, logging to stderr only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	return newLogger(os.Stderr, file, level), file.Close
}

// newLogger fans text records on stderr out to JSON records on file; nil file logs text only.
func newLogger(stderr, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	text := slog.NewTextHandler(stderr, opts)
	if file == nil {
		return slog.New(text)
	}

	return slog.New(slogmulti.Fanout(text, slog.NewJSONHandler(file, opts)))
}
