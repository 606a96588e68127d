package logging

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogrusLevel converts the level to its logrus equivalent.
func (l LogLevel) LogrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel // Default to INFO for unknown
	}
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Levels lists the accepted level names, for flag help text.
func Levels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ClockFormatter renders entries as "[15:04:05] LEVEL: message".
//
// Fields are dropped except for an attached error, which is appended so that
// WithError calls stay visible on the single output line.
type ClockFormatter struct{}

// Format implements logrus.Formatter.
func (f *ClockFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "[%s] %s: %s",
		entry.Time.Format("15:04:05"),
		strings.ToUpper(entry.Level.String()),
		entry.Message,
	)

	if err, ok := entry.Data[logrus.ErrorKey]; ok {
		fmt.Fprintf(&b, " (%v)", err)
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

// New creates a logger writing clock-formatted lines to output.
// Writes are synchronous, so lines appear in call order.
func New(level LogLevel, output io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(output)
	log.SetFormatter(&ClockFormatter{})
	log.SetLevel(level.LogrusLevel())

	return log
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *logrus.Logger {
	return New(LevelError, io.Discard)
}
