// logger.go - structured logging setup for the groupsig daemon.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the daemon's root logger: pretty console output plus,
// if logFile is set, a second append-only JSON stream. Library code in
// internal/groupsig and internal/engine never logs — only the daemon and
// internal/transport, which have a caller to report to, do.
func newLogger(level, nodeID, logFile string) (zerolog.Logger, func() error, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}

	var writers []io.Writer
	writers = append(writers, console)

	closeFile := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closeFile = f.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parsed).
		With().
		Timestamp().
		Str("node", nodeID).
		Logger()

	return logger, closeFile, nil
}
