package renderer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ZerologLogger implements core.Logger on top of a zerolog logger
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger adapts an existing zerolog logger
func NewZerologLogger(log zerolog.Logger) core.Logger {
	return &ZerologLogger{log: log}
}

// NewDefaultLogger creates a human readable logger writing to stdout
func NewDefaultLogger() core.Logger {
	return NewZerologLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().Timestamp().Str("component", "renderer").Logger())
}

// Printf implements core.Logger
func (zl *ZerologLogger) Printf(format string, args ...interface{}) {
	zl.log.Info().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
