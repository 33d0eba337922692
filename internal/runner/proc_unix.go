//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the shell in its own process group so cancellation
// reaches the build driver and its children, not only the wrapper shell.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// pty 模式下 Setsid 同样让子进程成为进程组组长。
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
