package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the logging level
type Level logrus.Level

// Logging levels
const (
	DebugLevel Level = Level(logrus.DebugLevel)
	InfoLevel  Level = Level(logrus.InfoLevel)
	WarnLevel  Level = Level(logrus.WarnLevel)
	ErrorLevel Level = Level(logrus.ErrorLevel)
	FatalLevel Level = Level(logrus.FatalLevel)
	PanicLevel Level = Level(logrus.PanicLevel)
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)
}

// ParseLevel maps "debug", "info", "warn", "error", "fatal" and "panic" to a Level.
func ParseLevel(s string) (Level, error) {
	lv, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return Level(lv), nil
}

// SetLevel sets the logging level
func SetLevel(level Level) {
	logger.SetLevel(logrus.Level(level))
}

// IsDebug reports whether debug output is enabled. Hot paths check it before
// formatting frame summaries.
func IsDebug() bool {
	return logger.IsLevelEnabled(logrus.DebugLevel)
}

// SetFormatter sets the log formatter
func SetFormatter(formatter logrus.Formatter) {
	logger.SetFormatter(formatter)
}

// SetOutput sets the log output
func SetOutput(output io.Writer) {
	logger.SetOutput(output)
}

// Options bundles everything Configure applies in one go.
type Options struct {
	Level      string
	JSON       bool
	File       string // empty keeps stdout only
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
}

// Configure applies level, formatter and optional file rotation.
func Configure(o Options) error {
	if o.Level != "" {
		lv, err := ParseLevel(o.Level)
		if err != nil {
			return err
		}
		SetLevel(lv)
	}
	if o.JSON {
		SetFormatter(&logrus.JSONFormatter{})
	} else {
		SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if o.File == "" {
		return nil
	}
	return EnableFileLogging(filepath.Dir(o.File), filepath.Base(o.File), o.MaxSize, o.MaxBackups, o.MaxAge)
}

// EnableFileLogging enables logging to a file with rotation
func EnableFileLogging(logDir, logFile string, maxSize, maxBackups, maxAge int) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	rotateLogger := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFile),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}

	// stdout stays attached so container logs keep working
	logger.SetOutput(io.MultiWriter(os.Stdout, rotateLogger))
	return nil
}

// For returns an entry tagged with the component name, e.g. For("tuntap").
func For(component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// WithFields creates a new log entry with fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Fatalf logs a fatal message and exits
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
