// Package logging builds the zerolog logger shared by gofreeze.
//
// The interactive list owns the terminal, so logs never go to stdout or
// stderr: they are either discarded or appended to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to path. An empty path yields a
// disabled logger and a no-op closer.
func New(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}

	lvl := zerolog.DebugLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), io.NopCloser(nil), fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil), fmt.Errorf("open log file: %w", err)
	}

	logger := zerolog.New(f).Level(lvl).With().Timestamp().Str("component", "gofreeze").Logger()
	return logger, f, nil
}
