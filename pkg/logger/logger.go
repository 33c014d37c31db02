// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Log is the global logger instance
var Log zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
	configure("debug")
}

// SetLevel reconfigures the global logger from the server mode or a
// zerolog level name. "release" switches to plain JSON output at info
// level; everything else keeps the colored console writer at the named
// level, defaulting to debug.
func SetLevel(mode string) {
	configure(mode)
}

func configure(mode string) {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	level := zerolog.DebugLevel
	if mode == "release" {
		out = os.Stdout
		level = zerolog.InfoLevel
	} else if parsed, err := zerolog.ParseLevel(mode); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	zerolog.SetGlobalLevel(level)
	Log = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}
