package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"ninja-mcp/internal/logger"
)

var log = logger.Named("tui")

// IsTerminal 判断 f 是否连接到终端。
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type doneMsg struct{}

// spinnerModel 在等待期间显示 spinner、标签与已用时间。
type spinnerModel struct {
	spin    spinner.Model
	label   string
	started time.Time
	now     func() time.Time
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	return spinnerModel{spin: spin, label: label, started: time.Now(), now: time.Now}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	elapsed := m.now().Sub(m.started).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s\n", m.spin.View(), m.label,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")).Render(fmt.Sprintf("(%s)", elapsed)))
}

// Spin 运行 fn；out 为终端时在 out 上显示 spinner，否则直接执行。
// 不接管键盘输入与信号，Ctrl+C 由调用方的 ctx 处理。
func Spin(ctx context.Context, out *os.File, label string, fn func(context.Context) error) error {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	p := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(ctx)
		p.Send(doneMsg{})
	}()
	if _, err := p.Run(); err != nil {
		log.Warnf("spinner stopped: %v", err)
	}
	return <-errCh
}
