// Package logging configures the daemon's logrus logger from a level
// directive, and defines the narrow Logger interface the rest of the
// daemon depends on so production code and tests can share call sites.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the logging capability every component takes a dependency on.
// *logrus.Logger and *logrus.Entry both satisfy it.
type Logger interface {
	WithField(key string, value interface{}) *logrus.Entry
	WithError(err error) *logrus.Entry
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

// New builds a *logrus.Logger from a level directive such as "info",
// "debug" or "warn". An empty or unrecognized level defaults to info.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return l
}
