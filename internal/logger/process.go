package logger

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessLogger 记录子进程的启动、输出行与退出。
type ProcessLogger interface {
	Start(command string, dir string)
	Line(stream string, line string)
	Exit(code *int, elapsed time.Duration)
	SpawnError(command string, err error)
}

// StdProcessLogger 使用 logrus 输出子进程日志。输出行只在 debug 级别记录。
type StdProcessLogger struct {
	logger *logrus.Entry
}

// NewProcessLogger 基于给定 entry 构造记录器，nil 时使用全局 logger。
func NewProcessLogger(entry *LogEntry) *StdProcessLogger {
	if entry == nil {
		entry = Named("process")
	}
	return &StdProcessLogger{logger: entry}
}

func (l *StdProcessLogger) Start(command string, dir string) {
	l.printf(logrus.InfoLevel, "-> spawn dir=%s cmd=%s", dir, sanitize(command))
}

func (l *StdProcessLogger) Line(stream string, line string) {
	l.printf(logrus.DebugLevel, "<- %s %s", stream, sanitize(line))
}

func (l *StdProcessLogger) Exit(code *int, elapsed time.Duration) {
	status := "none"
	if code != nil {
		status = fmt.Sprintf("%d", *code)
	}
	l.printf(logrus.InfoLevel, "<- exit code=%s elapsed=%s", status, elapsed.Round(time.Millisecond))
}

func (l *StdProcessLogger) SpawnError(command string, err error) {
	l.printf(logrus.ErrorLevel, "!! spawn failed cmd=%s err=%v", sanitize(command), err)
}

// NoopProcessLogger 忽略所有日志输出。
type NoopProcessLogger struct{}

func (NoopProcessLogger) Start(command string, dir string)      {}
func (NoopProcessLogger) Line(stream string, line string)       {}
func (NoopProcessLogger) Exit(code *int, elapsed time.Duration) {}
func (NoopProcessLogger) SpawnError(command string, err error)  {}

func (l *StdProcessLogger) printf(level logrus.Level, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	if !l.logger.Logger.IsLevelEnabled(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	entry := l.logger
	if caller := findCaller(); caller != "" {
		entry = entry.WithField("caller", caller)
	}
	entry.Log(level, msg)
}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}

func findCaller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.Contains(frame.File, "logger/process.go") && !strings.Contains(frame.File, "sirupsen/logrus") {
			return fmt.Sprintf("%s:%d", shortenFilePath(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
	return ""
}
