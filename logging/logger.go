package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New crea el logger de la consola. En desarrollo usa salida legible.
func New(environment, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	return NewWithWriter(out, level).With().Str("service", "clinisys").Logger()
}

// NewWithWriter crea un logger JSON sobre el writer indicado
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
