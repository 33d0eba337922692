package build

import (
	"fmt"
	"strings"
)

// Status classifies a compile invocation.
type Status string

const (
	StatusSuccess              Status = "success"
	StatusFailed               Status = "failed"
	StatusDirectoryUnreachable Status = "directory_unreachable"
	StatusInternalError        Status = "internal_error"
	StatusRejected             Status = "rejected"
)

// Report is the structured result of one compile call. Text renders the
// human-readable view returned as the tool's text content.
type Report struct {
	Status     Status `json:"status"`
	WorkDir    string `json:"workDir"`
	BuildPath  string `json:"buildPath"`
	Target     string `json:"target"`
	Command    string `json:"command,omitempty"`
	CurrentDir string `json:"currentDir,omitempty"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   *int   `json:"exitCode"`
	Message    string `json:"message,omitempty"`
	Stack      string `json:"stack,omitempty"`
}

// OK reports whether the build ran and exited zero.
func (r Report) OK() bool {
	return r.Status == StatusSuccess
}

func (r Report) exitCodeText() string {
	if r.ExitCode == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *r.ExitCode)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (r Report) Text() string {
	var b strings.Builder
	switch r.Status {
	case StatusDirectoryUnreachable:
		b.WriteString("Failed to change directory:\n")
		fmt.Fprintf(&b, "Target directory: %s\n", r.WorkDir)
		fmt.Fprintf(&b, "Error: %s\n", orDefault(r.Stderr, r.Message))
		fmt.Fprintf(&b, "Current directory: %s", r.CurrentDir)

	case StatusInternalError:
		b.WriteString("Build Failed:\n")
		fmt.Fprintf(&b, "Working Directory: %s\n", orDefault(r.WorkDir, "Unknown directory"))
		fmt.Fprintf(&b, "Command: %s\n", r.Command)
		fmt.Fprintf(&b, "Output:\n%s\n", r.Stdout)
		fmt.Fprintf(&b, "Errors:\n%s\n", r.Stderr)
		fmt.Fprintf(&b, "Error Message: %s\n", r.Message)
		fmt.Fprintf(&b, "Error Stack: %s", orDefault(r.Stack, "No stack trace"))

	case StatusRejected:
		b.WriteString("Invalid arguments:\n")
		fmt.Fprintf(&b, "Working Directory: %s\n", r.WorkDir)
		fmt.Fprintf(&b, "Build Path: %s\n", r.BuildPath)
		fmt.Fprintf(&b, "Target: %s\n", r.Target)
		fmt.Fprintf(&b, "Error: %s", r.Message)

	default:
		status, summary := "Failed", "Build failed"
		if r.OK() {
			status, summary = "Success", "Build completed"
		}
		b.WriteString("Build Details:\n")
		fmt.Fprintf(&b, "Working Directory: %s\n", r.WorkDir)
		fmt.Fprintf(&b, "Build Command: %s\n", r.Command)
		fmt.Fprintf(&b, "Output:\n%s\n", r.Stdout)
		fmt.Fprintf(&b, "Errors:\n%s\n", r.Stderr)
		if r.Message != "" {
			fmt.Fprintf(&b, "Error Message: %s\n", r.Message)
		}
		fmt.Fprintf(&b, "Status: %s\n", status)
		fmt.Fprintf(&b, "Exit Code: %s\n", r.exitCodeText())
		b.WriteString(summary)
	}
	return b.String()
}
