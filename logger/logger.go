package logger

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. format is "text" or "json"; an unknown
// level falls back to info.
func New(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	if out != nil {
		l.SetOutput(out)
	}
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.DateTime,
			FullTimestamp:   true,
		})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
