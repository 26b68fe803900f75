package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level   string    // debug, info, warn, error
	Pretty  bool      // human readable console output
	Out     io.Writer // defaults to stderr so stdout stays the conversation
	Secrets []string  // exact values masked in every line
}

// New creates a zerolog logger. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || len(cfg.Level) == 0 {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stderr
	if cfg.Out != nil {
		writer = cfg.Out
	}

	redactor := NewRedactor(cfg.Secrets...)
	writer = redactor.Wrap(writer)

	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.Out != nil,
		}
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}
