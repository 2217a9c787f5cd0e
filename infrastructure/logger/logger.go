package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Logger is a subsystem logger for a Backend.
type Logger struct {
	lvl uint32 // atomic
	tag string
	b   *Backend
}

// Trace formats message using the default formats for its operands, prepends
// the prefix as necessary, and writes to log with LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.write(LevelTrace, fmt.Sprint(args...))
}

// Tracef formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.writef(LevelTrace, format, args...)
}

// Debug writes to log with LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.write(LevelDebug, fmt.Sprint(args...))
}

// Debugf writes a formatted message to log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.writef(LevelDebug, format, args...)
}

// Info writes to log with LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.write(LevelInfo, fmt.Sprint(args...))
}

// Infof writes a formatted message to log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.writef(LevelInfo, format, args...)
}

// Warn writes to log with LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.write(LevelWarn, fmt.Sprint(args...))
}

// Warnf writes a formatted message to log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.writef(LevelWarn, format, args...)
}

// Error writes to log with LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.write(LevelError, fmt.Sprint(args...))
}

// Errorf writes a formatted message to log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.writef(LevelError, format, args...)
}

// Critical writes to log with LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.write(LevelCritical, fmt.Sprint(args...))
}

// Criticalf writes a formatted message to log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.writef(LevelCritical, format, args...)
}

// Level returns the current logging level
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.lvl))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.lvl, uint32(level))
}

// Backend returns the log backend
func (l *Logger) Backend() *Backend {
	return l.b
}

func (l *Logger) writef(level Level, format string, args ...interface{}) {
	if l.Level() > level {
		return
	}
	l.emit(level, fmt.Sprintf(format, args...))
}

func (l *Logger) write(level Level, message string) {
	if l.Level() > level {
		return
	}
	l.emit(level, message)
}

func (l *Logger) emit(level Level, message string) {
	var file string
	var line int
	if l.b.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		file, line = callsite(l.b.flag)
	}

	buf := &bytes.Buffer{}
	formatHeader(buf, time.Now(), level.String(), l.tag, file, line)
	buf.WriteString(message)
	buf.WriteByte('\n')
	l.b.write(logEntry{log: buf.Bytes(), level: level})
}

// formatHeader writes a log header to buf. The format is
// "2006-01-02 15:04:05.000 [LVL] TAG: " with an optional file:line.
func formatHeader(buf *bytes.Buffer, t time.Time, lvl, tag string, file string, line int) {
	buf.WriteString(t.Format("2006-01-02 15:04:05.000"))
	buf.WriteString(" [")
	buf.WriteString(lvl)
	buf.WriteString("] ")
	buf.WriteString(tag)
	if file != "" {
		buf.WriteByte(' ')
		buf.WriteString(file)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(line))
	}
	buf.WriteString(": ")
}

// calldepth is the call depth of the callsite function relative to the
// caller of the subsystem logger.
const calldepth = 4

func callsite(flag uint32) (string, int) {
	_, file, line, ok := runtime.Caller(calldepth)
	if !ok {
		return "???", 0
	}
	if flag&LogFlagShortFile != 0 {
		file = filepath.Base(file)
	}
	return file, line
}
