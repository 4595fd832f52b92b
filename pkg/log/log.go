// Package log is a thin wrapper around logrus that keeps non-debug
// logging cheap and field construction uniform.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var (
	l     = logrus.New()
	debug = false
)

// SetDebug controls debug logging.
func SetDebug(to bool) {
	debug = to
	if to {
		l.Level = logrus.DebugLevel
	} else {
		l.Level = logrus.InfoLevel
	}
}

// SetFormatter sets the formatter.
func SetFormatter(to logrus.Formatter) {
	l.Formatter = to
}

// SetOutput sets the output.
func SetOutput(to io.Writer) {
	l.Out = to
}

// Fields is a map of logging fields.
type Fields map[string]interface{}

// Err wraps an error into Fields, recording its message and type.
func Err(e error) Fields {
	return Fields{
		"error": e.Error(),
		"type":  fmt.Sprintf("%T", e),
	}
}

func merge(ff []Fields) logrus.Fields {
	if len(ff) == 0 {
		return nil
	}
	merged := make(logrus.Fields, len(ff[0]))
	for _, f := range ff {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// Debug logs at the debug level if debug logging is enabled.
func Debug(v interface{}, ff ...Fields) {
	if debug {
		l.WithFields(merge(ff)).Debug(v)
	}
}

// Info logs at the info level.
func Info(v interface{}, ff ...Fields) {
	l.WithFields(merge(ff)).Info(v)
}

// Warn logs at the warning level.
func Warn(v interface{}, ff ...Fields) {
	l.WithFields(merge(ff)).Warn(v)
}

// Error logs at the error level.
func Error(v interface{}, ff ...Fields) {
	l.WithFields(merge(ff)).Error(v)
}

// Fatal logs at the fatal level and exits with a status code != 0.
func Fatal(v interface{}, ff ...Fields) {
	l.WithFields(merge(ff)).Fatal(v)
}
