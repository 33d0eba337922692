package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestIsTerminal(t *testing.T) {
	if IsTerminal(nil) {
		t.Fatalf("nil file is not a terminal")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Fatalf("regular file reported as terminal")
	}
}

func TestSpinWithoutTerminalRunsDirectly(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	want := errors.New("build failed")
	called := false
	got := Spin(context.Background(), f, "compiling", func(context.Context) error {
		called = true
		return want
	})
	if !called || !errors.Is(got, want) {
		t.Fatalf("Spin() = %v, called=%v", got, called)
	}
	info, _ := f.Stat()
	if info.Size() != 0 {
		t.Fatalf("spinner wrote %d bytes to a non-terminal", info.Size())
	}
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("compiling chrome")
	start := m.started
	m.now = func() time.Time { return start.Add(3500 * time.Millisecond) }

	view := m.View()
	if !strings.Contains(view, "compiling chrome") || !strings.Contains(view, "(3s)") {
		t.Fatalf("View() = %q", view)
	}
	if m.Init() == nil {
		t.Fatalf("Init should start ticking")
	}

	next, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatalf("doneMsg should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
	if next.View() != "" {
		t.Fatalf("finished spinner should render nothing")
	}
}
