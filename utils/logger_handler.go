package utils

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggerHandler wraps a logrus logger and tags each line with the calling
// source file so log output reads "[scheduler] ..." without callers passing it.
type LoggerHandler struct {
	entry *logrus.Logger
}

func NewLoggerHandler(level string) *LoggerHandler {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLogLevel(level))
	l.SetFormatter(newFormatter(os.Getenv("LOG_FORMAT"), shouldUseColor()))
	return &LoggerHandler{entry: l}
}

func parseLogLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func shouldUseColor() bool {
	if strings.EqualFold(os.Getenv("NO_COLOR"), "1") || strings.EqualFold(os.Getenv("NO_COLOR"), "true") {
		return false
	}
	if strings.EqualFold(os.Getenv("LOG_COLOR"), "0") || strings.EqualFold(os.Getenv("LOG_COLOR"), "false") {
		return false
	}
	return true
}

func newFormatter(format string, useColor bool) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     useColor,
		DisableColors:   !useColor,
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	}
}

func (l *LoggerHandler) SetLevel(level string) {
	l.entry.SetLevel(parseLogLevel(level))
}

func (l *LoggerHandler) SetUseColor(useColor bool) {
	l.entry.SetFormatter(newFormatter(os.Getenv("LOG_FORMAT"), useColor))
}

func (l *LoggerHandler) SetOutput(w io.Writer) {
	l.entry.SetOutput(w)
}

func (l *LoggerHandler) with(fields logrus.Fields) *logrus.Entry {
	e := l.entry.WithField("source", callerFileName())
	if len(fields) > 0 {
		e = e.WithFields(fields)
	}
	return e
}

func (l *LoggerHandler) Debugf(format string, args ...interface{}) {
	l.with(nil).Debugf(format, args...)
}

func (l *LoggerHandler) Infof(format string, args ...interface{}) {
	l.with(nil).Infof(format, args...)
}

func (l *LoggerHandler) Warnf(format string, args ...interface{}) {
	l.with(nil).Warnf(format, args...)
}

func (l *LoggerHandler) Errorf(format string, args ...interface{}) {
	l.with(nil).Errorf(format, args...)
}

// WithFields returns an entry carrying structured fields plus the caller source.
func (l *LoggerHandler) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.with(fields)
}

func callerFileName() string {
	const thisFile = "logger_handler.go"

	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return "unknown"
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		base := filepath.Base(frame.File)
		if base != thisFile {
			return strings.TrimSuffix(base, filepath.Ext(base))
		}
		if !more {
			break
		}
	}

	return "unknown"
}

var defaultLogger = NewLoggerHandler(os.Getenv("LOG_LEVEL"))

func SetLogLevel(level string) {
	defaultLogger.SetLevel(level)
}

func SetLogColor(useColor bool) {
	defaultLogger.SetUseColor(useColor)
}

func SetLogOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

func Debugf(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return defaultLogger.WithFields(fields)
}
