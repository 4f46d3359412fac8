package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. JSON uses timestamp/level/message
// keys; LOG_FORMAT=text switches to the text formatter for local runs.
func NewLogger(cfg *Config, serviceName string) *logrus.Entry {
	return newLogger(cfg, serviceName, os.Stdout)
}

func newLogger(cfg *Config, serviceName string, out io.Writer) *logrus.Entry {
	log := logrus.New()

	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log.WithField("service", serviceName)
}
