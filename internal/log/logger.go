// Package log implements the leveled, component-tagged logger used by every
// layer above the manager's per-frame loop. The Martin estimator's inner
// per-bin loop never calls into this package: it is not real-time safe by
// design (it locks a mutex around the shared *stdlog.Logger).
package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// Level defines the severity of a log message.
type Level uint32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a Level.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (Level, bool) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var currentLevel atomic.Uint32

var logger = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level Level) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

func shouldLog(level Level) bool {
	return level >= GetLevel()
}

// Logger is a component-tagged handle. Every call site above the hot path
// gets one via Component so a reconfiguration storm in the estimator can be
// told apart from one in the manager without grepping raw messages.
type Logger struct {
	component string
}

// Component returns a Logger tagged with name, e.g. Component("martin").
func Component(name string) Logger {
	return Logger{component: name}
}

func (l Logger) logf(level Level, format string, v ...interface{}) {
	if !shouldLog(level) {
		return
	}
	logger.Printf("[%s] [%s] %s", level, l.component, fmt.Sprintf(format, v...))
}

func (l Logger) Debugf(format string, v ...interface{}) { l.logf(LevelDebug, format, v...) }
func (l Logger) Infof(format string, v ...interface{})  { l.logf(LevelInfo, format, v...) }
func (l Logger) Warnf(format string, v ...interface{})  { l.logf(LevelWarn, format, v...) }
func (l Logger) Errorf(format string, v ...interface{}) { l.logf(LevelError, format, v...) }

// Fatalf logs unconditionally and exits, mirroring the package-level Fatalf.
func (l Logger) Fatalf(format string, v ...interface{}) {
	logger.Fatalf("[%s] [%s] %s", LevelFatal, l.component, fmt.Sprintf(format, v...))
}

// --- Package-level convenience functions, untagged (component "-"). ---

var root = Component("-")

func Debugf(format string, v ...interface{}) { root.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { root.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { root.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { root.Errorf(format, v...) }
func Fatalf(format string, v ...interface{}) { root.Fatalf(format, v...) }
