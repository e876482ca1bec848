package util

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(logrus.InfoLevel)
}

// SetLogLevel parses the configured level name, defaulting to Info on
// anything unrecognized.
func SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		base.SetLevel(logrus.DebugLevel)
	case "INFO":
		base.SetLevel(logrus.InfoLevel)
	case "WARN":
		base.SetLevel(logrus.WarnLevel)
	case "ERROR":
		base.SetLevel(logrus.ErrorLevel)
	case "NONE":
		base.SetLevel(logrus.PanicLevel + 1)
	default:
		base.SetLevel(logrus.InfoLevel)
	}
}

// Log returns the shared logrus entry scoped to tag, ready for
// .WithFields() chaining by callers that want connection/session ids
// attached.
func Log(tag string) *logrus.Entry {
	return base.WithField("component", tag)
}

func Debug(tag, msg string, args ...interface{}) { Log(tag).Debugf(msg, args...) }
func Info(tag, msg string, args ...interface{})  { Log(tag).Infof(msg, args...) }
func Warn(tag, msg string, args ...interface{})  { Log(tag).Warnf(msg, args...) }
func Error(tag, msg string, args ...interface{}) { Log(tag).Errorf(msg, args...) }
func Fatal(tag, msg string, args ...interface{}) { Log(tag).Fatalf(msg, args...) }
