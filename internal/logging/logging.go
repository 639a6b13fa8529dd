package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup configures the logrus standard logger. Unknown levels fall back to info.
func Setup(level, format string) *log.Logger {
	l := log.StandardLogger()
	l.SetOutput(os.Stdout)

	if strings.EqualFold(strings.TrimSpace(format), "text") {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&log.JSONFormatter{})
	}

	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
