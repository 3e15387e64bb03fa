package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development gets a console writer, every
// other environment writes JSON lines to stdout.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	out := w
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "development", "local":
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "test":
		level = zerolog.WarnLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "billing-api").Logger()
}
