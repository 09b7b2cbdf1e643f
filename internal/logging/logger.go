package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Init configures the process logger. format is "text" or "json".
func Init(level, format string) *logrus.Logger {
	log := logrus.New()

	if parsed, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(parsed)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid log level, using INFO")
	}

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(os.Stdout)
	logger = log
	return log
}

// Get returns the process logger, initialising a default one if needed
func Get() *logrus.Logger {
	once.Do(func() {
		if logger == nil {
			Init("info", "text")
		}
	})
	return logger
}

// WithComponent creates a logger entry tagged with a component name
func WithComponent(name string) *logrus.Entry {
	return Get().WithField("component", name)
}
