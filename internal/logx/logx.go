// Package logx is the leveled logger shared by the web host, the CLI and the
// core packages. Lines go to stderr unless SetOutput redirects them.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level is a log severity. The zero value is LevelInfo.
type Level int32

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

// ParseLevel accepts debug, info, warn (or warning) and error, in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	level atomic.Int32

	mu  sync.Mutex
	out = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func SetLevel(l Level) { level.Store(int32(l)) }

func GetLevel() Level { return Level(level.Load()) }

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool { return l >= GetLevel() }

// SetOutput sends subsequent lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out.SetOutput(w)
}

// Log writes msg verbatim at level l.
func Log(l Level, msg string) {
	if !Enabled(l) {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	out.Printf("[%s] %s", strings.ToUpper(l.String()), msg)
}

func logf(l Level, format string, args ...interface{}) {
	if !Enabled(l) {
		return
	}
	Log(l, fmt.Sprintf(format, args...))
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }
