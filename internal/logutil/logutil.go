package logutil

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cloud.google.com/go/compute/metadata"
)

const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ConfigureLogger sets up the global logger. Logs always go to stderr since
// stdout may carry command output.
func ConfigureLogger(format, level string) error {
	return configureLogger(os.Stderr, format, level)
}

func configureLogger(w io.Writer, format, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).With().Timestamp().Caller().Stack().Logger()

	switch format {
	case FormatJSON:
		logger = logger.Hook(ErrorHook{})
	case FormatConsole:
		logger = logger.Output(zerolog.ConsoleWriter{Out: w})
	case FormatAuto, "":
		if metadata.OnGCE() {
			logger = logger.Hook(ErrorHook{})
		} else {
			logger = logger.Output(zerolog.ConsoleWriter{Out: w})
		}
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.Logger = logger.Sample(LevelSampler{Level: lvl})
	return nil
}

type ErrorHook struct{}

func (h ErrorHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	e.Str("severity", level.String())
}
