// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params configures Setup.
type Params struct {
	Level    string
	JSON     bool
	File     string
	ToStdout bool
}

// Setup applies p to the standard logrus logger. With a file name, output
// goes to a rotated file, and to stdout as well when ToStdout is set.
func Setup(p Params) {
	Configure(logrus.StandardLogger(), p)
}

// Configure applies p to l.
func Configure(l *logrus.Logger, p Params) {
	if p.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetLevel(GetLevel(p.Level))

	if p.File == "" {
		l.SetOutput(os.Stdout)
		return
	}

	name := p.File
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	file := &lumberjack.Logger{
		Filename:   name,
		MaxSize:    20, // megabytes
		MaxBackups: 10,
		Compress:   true,
	}
	if p.ToStdout {
		l.SetOutput(io.MultiWriter(os.Stdout, file))
	} else {
		l.SetOutput(file)
	}
}

// GetLevel parses a level name. Unknown names mean info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
