package logger

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry 暴露底层类型，避免调用方直接依赖 logrus 包。
type LogEntry = logrus.Entry

// DefaultLogPath 默认日志文件路径。
const DefaultLogPath = "logs/ninja-mcp.log"

var rootLogger = logrus.StandardLogger()

// Configure 设置全局日志格式与 caller 输出。
// stdout 在 serve 模式下承载协议帧，因此默认输出改为 stderr。
func Configure() {
	root().SetReportCaller(true)
	root().SetFormatter(PlainFormatter{})
	root().SetOutput(os.Stderr)
}

// SetLevel 按名称设置全局日志级别（debug/info/warn/error）。
// 空字符串保持当前级别。
func SetLevel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", name, err)
	}
	root().SetLevel(level)
	return nil
}

// SetupFile 将全局日志输出重定向到指定路径（默认 logs/ninja-mcp.log）。
// 返回底层文件的 closer 以便调用方清理。
func SetupFile(logPath string) (io.Closer, string, error) {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	f, resolved, err := openLogFile(logPath)
	if err != nil {
		return nil, "", err
	}
	root().SetOutput(f)
	return f, resolved, nil
}

// SetupComponentFile 创建独立的 logger，输出到指定文件并附加 component 字段。
// 新 logger 继承全局日志级别。
func SetupComponentFile(component, logPath string) (*LogEntry, io.Closer, string, error) {
	f, resolved, err := openLogFile(logPath)
	if err != nil {
		return nil, nil, "", err
	}
	l := logrus.New()
	l.SetReportCaller(true)
	l.SetFormatter(PlainFormatter{})
	l.SetOutput(f)
	l.SetLevel(root().GetLevel())

	entry := logrus.NewEntry(l)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry, f, resolved, nil
}

// Entry 返回未附加字段的全局入口。
func Entry() *LogEntry {
	return logrus.NewEntry(root())
}

// Named 为指定组件创建入口，统一 component 字段。
func Named(component string) *LogEntry {
	entry := Entry()
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

// Discard 返回不输出任何内容的入口，供测试与静默模式使用。
func Discard() *LogEntry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// StdLogger 把 entry 包装成标准库 *log.Logger，写入的每一行以 level 级别输出。
// 用于只接受 *log.Logger 的第三方库。
func StdLogger(entry *LogEntry, level logrus.Level) *stdlog.Logger {
	if entry == nil {
		entry = Entry()
	}
	return stdlog.New(entry.WriterLevel(level), "", 0)
}

func root() *logrus.Logger {
	if rootLogger == nil {
		rootLogger = logrus.StandardLogger()
	}
	return rootLogger
}

// PlainFormatter 统一输出格式：caller [timestamp] [LEVEL] [component] message fields。
type PlainFormatter struct{}

// Format 实现 logrus Formatter。
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	timestamp := entry.Time.UTC().Format(time.RFC3339Nano)
	level := strings.ToUpper(entry.Level.String())
	component := ""
	if val, ok := entry.Data["component"].(string); ok && val != "" {
		component = val
	}
	caller := formatCaller(entry)
	fields := formatFields(entry.Data)

	parts := make([]string, 0, 6)
	if caller != "" {
		parts = append(parts, caller)
	}
	parts = append(parts, fmt.Sprintf("[%s]", timestamp))
	parts = append(parts, fmt.Sprintf("[%s]", level))
	if component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	parts = append(parts, entry.Message)
	if fields != "" {
		parts = append(parts, fields)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatCaller(entry *logrus.Entry) string {
	if entry == nil {
		return ""
	}
	if entry.HasCaller() && entry.Caller != nil {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	if caller, ok := entry.Data["caller"].(string); ok && caller != "" {
		return caller
	}
	return ""
}

func formatFields(fields logrus.Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "component" || k == "caller" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	if idx := strings.Index(file, "/internal/"); idx != -1 {
		return file[idx+1:]
	}
	if idx := strings.Index(file, "/cmd/"); idx != -1 {
		return file[idx+1:]
	}
	if idx := strings.Index(file, "/ninja-mcp/"); idx != -1 {
		return file[idx+len("/ninja-mcp/"):]
	}
	return filepath.Base(file)
}

func openLogFile(logPath string) (*os.File, string, error) {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", err
	}
	return f, logPath, nil
}
