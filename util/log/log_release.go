//go:build release

package log

import (
	"os"
	"path/filepath"

	"github.com/gaubeleo/photoframe/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		l.Fatalf("Failed to get user home directory: %v", err)
	}
	logDir := filepath.Join(userHomeDir, config.LogSubDir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		l.Fatalf("Failed to create log directory: %v", err)
	}

	l.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, config.AppName+config.LogExt),
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	})
	return l
}

// Logger exposes the underlying logrus logger.
func Logger() *logrus.Logger {
	return std
}

// SetLevel parses a level name and applies it. Debug is never enabled in release builds.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	if lvl > logrus.InfoLevel {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
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

// Debug is a no-op in release builds.
func Debug(v ...interface{}) {}

// Debugf is a no-op in release builds.
func Debugf(format string, v ...interface{}) {}

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
