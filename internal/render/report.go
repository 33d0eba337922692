package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mattn/go-runewidth"

	"ninja-mcp/internal/build"
)

const (
	FrameHeader = "=== Build Details ==="
	FrameFooter = "======================"
)

var (
	accent   = lipgloss.Color("#7D56F4")
	dimColor = lipgloss.Color("#7D7A85")

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC0000")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7A700")).Bold(true)
	dim       = lipgloss.NewStyle().Foreground(dimColor)
)

// Truncate 按显示宽度截断，CJK 字符按双宽计算。
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Frame 用固定的分隔行包裹报告文本。
func Frame(text string) string {
	return FrameHeader + "\n" + strings.TrimRight(text, "\n") + "\n" + FrameFooter
}

// Header 渲染调用前的摘要框：目标、输出目录与工作目录。
func Header(req build.Request, width int) string {
	left := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("ninja-mcp")
	info := []string{string(req.Target), req.BuildPath, req.WorkDir}
	right := dim.Render(Truncate(strings.Join(info, " • "), maxInt(10, width-16)))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().PaddingLeft(2).Render(right)))
}

// StatusLine 渲染报告的单行状态。
func StatusLine(rep build.Report, width int) string {
	label, style := statusLabel(rep.Status)
	parts := []string{style.Render(label)}
	if rep.ExitCode != nil {
		parts = append(parts, fmt.Sprintf("exit %d", *rep.ExitCode))
	}
	if rep.Command != "" {
		parts = append(parts, dim.Render(Truncate(rep.Command, maxInt(20, width/2))))
	}
	if rep.Status == build.StatusDirectoryUnreachable {
		parts = append(parts, dim.Render(Truncate(rep.WorkDir, maxInt(20, width/2))))
	}
	return strings.Join(parts, " • ")
}

func statusLabel(status build.Status) (string, lipgloss.Style) {
	switch status {
	case build.StatusSuccess:
		return "✔ success", okStyle
	case build.StatusFailed:
		return "✘ failed", errStyle
	case build.StatusDirectoryUnreachable:
		return "✘ directory unreachable", errStyle
	case build.StatusRejected:
		return "! rejected", warnStyle
	case build.StatusInternalError:
		return "! internal error", warnStyle
	default:
		return "? " + string(status), dim
	}
}

// ToolList 渲染 tools/list 的结果，每个工具一行，必填参数附在末尾。
func ToolList(list []mcp.Tool, width int) string {
	if len(list) == 0 {
		return dim.Render("(no tools)")
	}
	name := lipgloss.NewStyle().Bold(true).Foreground(accent)
	lines := make([]string, 0, len(list))
	for _, t := range list {
		line := fmt.Sprintf("- %s: %s", name.Render(t.Name), Truncate(t.Description, maxInt(20, width-len(t.Name)-4)))
		if len(t.InputSchema.Required) > 0 {
			line += dim.Render(fmt.Sprintf(" (required: %s)", strings.Join(t.InputSchema.Required, ", ")))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
