package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorRed    = "\033[31m"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var rank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

var (
	mu          sync.RWMutex
	globalLevel           = LogLevelInfo
	output      io.Writer = os.Stdout
)

// SetGlobalLevel sets the level used by loggers created with New.
func SetGlobalLevel(level LogLevel) {
	mu.Lock()
	globalLevel = level
	mu.Unlock()
}

// SetOutput redirects all loggers. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// ParseLevel maps a config string to a level; unknown values mean info.
func ParseLevel(s string) LogLevel {
	l := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rank[l]; ok {
		return l
	}
	return LogLevelInfo
}

type Log struct {
	level  LogLevel
	err    error
	fields string
}

func New() *Log {
	mu.RLock()
	defer mu.RUnlock()
	return &Log{level: globalLevel}
}

func (l *Log) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Log) WithError(err error) *Log {
	return &Log{level: l.level, err: err, fields: l.fields}
}

// WithUser tags every line with the user id.
func (l *Log) WithUser(userID string) *Log {
	return &Log{level: l.level, err: l.err, fields: l.fields + " user=" + userID}
}

func (l *Log) enabled(level LogLevel) bool {
	return rank[level] >= rank[l.level]
}

func (l *Log) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Log) write(color, icon, msg string) {
	mu.RLock()
	w := output
	mu.RUnlock()

	if l.err != nil {
		fmt.Fprintf(w, "%s[%s]%s %s %s%s: %v%s\n", color, l.timestamp(), ColorReset, icon, msg, l.fields, l.err, ColorReset)
		return
	}
	fmt.Fprintf(w, "%s[%s]%s %s %s%s%s\n", color, l.timestamp(), ColorReset, icon, msg, l.fields, ColorReset)
}

func (l *Log) Debug(msg string) {
	if !l.enabled(LogLevelDebug) {
		return
	}
	l.write(ColorCyan, "🔎", msg)
}

func (l *Log) Info(msg string) {
	if !l.enabled(LogLevelInfo) {
		return
	}
	l.write(ColorBlue, "ℹ️ ", msg)
}

// Success is an info line in green, used for stars earned and rewards unlocked.
func (l *Log) Success(msg string) {
	if !l.enabled(LogLevelInfo) {
		return
	}
	l.write(ColorGreen, "🌟", msg)
}

func (l *Log) Warn(msg string) {
	if !l.enabled(LogLevelWarn) {
		return
	}
	l.write(ColorYellow, "⚠️ ", msg)
}

func (l *Log) Error(msg string) {
	l.write(ColorRed, "❌", msg)
}
