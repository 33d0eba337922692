package tools

import (
	"io"
	"strings"
	"sync"

	"ninja-mcp/internal/logger"
)

// DefaultToolsLogPath 工具调用日志的默认路径。
const DefaultToolsLogPath = "logs/tools.log"

var (
	toolsLog           = logger.Named("tools")
	toolsLogConfigured bool
	toolsLogMu         sync.Mutex
	toolsLogCloser     io.Closer
	toolsLogPath       string
)

// SetupToolsLog 配置工具调用专用日志，返回文件 closer 及实际路径。
// 若 logPath 为空，则使用 DefaultToolsLogPath。
// 多次调用只会在首次生效；未调用时日志写入全局 logger。
func SetupToolsLog(logPath string) (io.Closer, string, error) {
	toolsLogMu.Lock()
	defer toolsLogMu.Unlock()

	if toolsLogConfigured {
		return toolsLogCloser, toolsLogPath, nil
	}
	if logPath == "" {
		logPath = DefaultToolsLogPath
	}

	entry, closer, resolved, err := logger.SetupComponentFile("tools", logPath)
	toolsLogConfigured = true
	toolsLogPath = resolved
	if err != nil {
		return nil, resolved, err
	}
	if entry != nil {
		toolsLog = entry
	}
	toolsLogCloser = closer
	return closer, resolved, nil
}

// Log 返回当前的工具日志入口。
func Log() *logger.LogEntry {
	toolsLogMu.Lock()
	defer toolsLogMu.Unlock()
	return toolsLog
}

func sanitizeForLog(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "(empty)"
	}
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}
