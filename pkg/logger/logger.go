package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the service logger writing JSON to stdout.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	SetLogLevel(log, level)
	return log
}

// SetLogLevel sets the level by name, falling back to info.
func SetLogLevel(log *logrus.Logger, level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}
