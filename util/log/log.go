//go:build !release

package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Logger exposes the underlying logrus logger (tests swap its output).
func Logger() *logrus.Logger {
	return std
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies it.
// Unknown names leave the level unchanged.
func SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		std.SetLevel(lvl)
	}
}

// Print logs at info level.
func Print(v ...interface{}) {
	std.Info(v...)
}

// Printf logs at info level.
func Printf(format string, v ...interface{}) {
	std.Infof(format, v...)
}

// Println logs at info level.
func Println(v ...interface{}) {
	std.Infoln(v...)
}

// Debug logs with a [DEBUG] prefix.
func Debug(v ...interface{}) {
	std.Debug(append([]interface{}{"[DEBUG] "}, v...)...)
}

// Debugf logs with a [DEBUG] prefix.
func Debugf(format string, v ...interface{}) {
	std.Debugf("[DEBUG] "+format, v...)
}

// Warnf logs at warning level.
func Warnf(format string, v ...interface{}) {
	std.Warnf(format, v...)
}

// Errorf logs at error level.
func Errorf(format string, v ...interface{}) {
	std.Errorf(format, v...)
}

// Fatal logs and exits.
func Fatal(v ...interface{}) {
	std.Fatal(v...)
}

// Fatalf logs and exits.
func Fatalf(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}

// Fatalln logs and exits.
func Fatalln(v ...interface{}) {
	std.Fatalln(v...)
}
