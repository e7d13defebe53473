package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Logs go to stderr so that command output on stdout stays machine-readable
func Setup(environment string) zerolog.Logger {
	return SetupWithWriter(environment, zerolog.ConsoleWriter{Out: os.Stderr})
}

// SetupWithWriter installs a logger writing to writer as the global logger
func SetupWithWriter(environment string, writer io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
