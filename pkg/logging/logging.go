// pkg/logging/logging.go - leveled console logging for hostprep.

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name into a LogLevel. Unknown names map to INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger writes leveled, key-value annotated messages to a single output.
type Logger struct {
	mu       sync.Mutex
	logger   *log.Logger
	logLevel LogLevel
}

var instance = &Logger{
	logger:   log.New(os.Stderr, "", log.LstdFlags),
	logLevel: LevelInfo,
}

// SetLevel adjusts the minimum severity emitted by the package logger.
func SetLevel(level LogLevel) {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.logLevel = level
}

// SetOutput redirects the package logger, primarily for tests.
func SetOutput(w io.Writer) {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.logger = log.New(w, "", log.LstdFlags)
}

func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.logLevel {
		return
	}

	var b strings.Builder
	b.WriteString(level.String())
	b.WriteString(" ")
	b.WriteString(message)
	for i := 0; i+1 < len(keyValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyValues[i], keyValues[i+1])
	}
	// An unpaired trailing key is printed bare rather than dropped.
	if len(keyValues)%2 != 0 {
		fmt.Fprintf(&b, " %v", keyValues[len(keyValues)-1])
	}
	l.logger.Print(b.String())
}

// Info logs a message at INFO level with optional key-value pairs.
func Info(message string, keyValues ...interface{}) {
	instance.logMessage(LevelInfo, message, keyValues...)
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func Debug(message string, keyValues ...interface{}) {
	instance.logMessage(LevelDebug, message, keyValues...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func Warn(message string, keyValues ...interface{}) {
	instance.logMessage(LevelWarn, message, keyValues...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func Error(message string, keyValues ...interface{}) {
	instance.logMessage(LevelError, message, keyValues...)
}
