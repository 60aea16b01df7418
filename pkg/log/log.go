// Package log builds the logrus entry shared by every port-kics command.
package log

import (
	"github.com/sirupsen/logrus"
)

// New returns a logrus entry annotated with the program name and version.
func New(version string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"version": version,
		"program": "port-kics",
	})
}

// SetLevel changes the global log level.
// An empty level keeps the current one, and an invalid level is logged and ignored.
func SetLevel(level string, logE *logrus.Entry) {
	if level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logE.WithField("log_level", level).WithError(err).Error("the log level is invalid")
		return
	}
	logrus.SetLevel(lvl)
}
