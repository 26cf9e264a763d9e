package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. format "json" selects the JSON formatter,
// anything else the text formatter.
func New(level, format string) *logrus.Logger {
	logger := logrus.New()
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to 'info'", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// OrStandard returns l, or the logrus standard logger when l is nil.
func OrStandard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
