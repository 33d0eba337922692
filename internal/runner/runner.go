package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sync/errgroup"

	"ninja-mcp/internal/i18n"
	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/shellenv"
)

// Spec describes one command to run inside the wrapper shell.
type Spec struct {
	Command string
	Args    []string
	Dir     string
}

// CommandLine renders the command as it appears in reports.
func (s Spec) CommandLine() string {
	return strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
}

// Result is the outcome of one child process. A non-zero exit is a normal
// result. ExitCode is nil when the child never started or died by signal.
type Result struct {
	Stdout   string
	Stderr   string
	Success  bool
	ExitCode *int
	Error    string
}

// EnvResolver supplies the child environment; called once per Run.
type EnvResolver interface {
	Resolve(ctx context.Context) map[string]string
}

// Options configures a Runner.
type Options struct {
	Shell     string
	ShellArgs []string
	// Profiles are sourced before the command; relative names are under $HOME.
	Profiles []string
	Language i18n.Language
	PTY      bool
	// Timeout bounds each Run; zero means no limit.
	Timeout time.Duration
	Env     EnvResolver
	Log     logger.ProcessLogger
}

// pipeCloseGrace bounds how long Wait keeps reading after the shell exits
// while a background descendant still holds stdout or stderr open.
const pipeCloseGrace = 5 * time.Second

// Runner executes commands through a login shell that first prints
// diagnostics and sources the user's profile files.
type Runner struct {
	opts Options
}

func New(opts Options) *Runner {
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
	}
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	if len(opts.ShellArgs) == 0 {
		opts.ShellArgs = []string{"-l", "-c"}
	}
	if opts.Log == nil {
		opts.Log = logger.NoopProcessLogger{}
	}
	return &Runner{opts: opts}
}

// Run executes spec to completion. It never returns an error: spawn
// failures are reported through Result.Error with Success=false.
func (r *Runner) Run(ctx context.Context, spec Spec) Result {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, r.opts.ShellArgs...), r.Script(spec))
	cmd := exec.CommandContext(ctx, r.opts.Shell, args...)
	cmd.Dir = spec.Dir
	cmd.Env = r.environ(ctx)
	cmd.WaitDelay = pipeCloseGrace
	cmd.Cancel = func() error { return killGroup(cmd) }

	r.opts.Log.Start(spec.CommandLine(), spec.Dir)
	start := time.Now()
	if r.opts.PTY {
		return r.runPTY(ctx, cmd, start)
	}
	return r.runPipes(ctx, cmd, start)
}

func (r *Runner) environ(ctx context.Context) []string {
	if r.opts.Env == nil {
		return os.Environ()
	}
	return shellenv.Environ(r.opts.Env.Resolve(ctx))
}

func (r *Runner) runPipes(ctx context.Context, cmd *exec.Cmd, start time.Time) Result {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	cmd.Stdout = outW
	cmd.Stderr = errW
	setProcessGroup(cmd)

	var stdout, stderr strings.Builder
	var g errgroup.Group
	g.Go(func() error { return r.drain("stdout", outR, &stdout) })
	g.Go(func() error { return r.drain("stderr", errR, &stderr) })

	if err := cmd.Start(); err != nil {
		outW.Close()
		errW.Close()
		_ = g.Wait()
		return r.spawnFailed(cmd, err)
	}
	waitErr := cmd.Wait()
	outW.Close()
	errW.Close()
	if err := g.Wait(); err != nil && waitErr == nil {
		waitErr = err
	}
	return r.finish(ctx, cmd, stdout.String(), stderr.String(), waitErr, start)
}

func (r *Runner) runPTY(ctx context.Context, cmd *exec.Cmd, start time.Time) Result {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return r.spawnFailed(cmd, fmt.Errorf("failed to start pty: %w", err))
	}
	defer ptmx.Close()

	var out strings.Builder
	var g errgroup.Group
	g.Go(func() error {
		err := r.drain("pty", ptmx, &out)
		// Linux 在从端全部关闭后返回 EIO，视同 EOF。
		if errors.Is(err, syscall.EIO) {
			return nil
		}
		return err
	})

	waitErr := cmd.Wait()
	drained := make(chan error, 1)
	go func() { drained <- g.Wait() }()
	var drainErr error
	select {
	case drainErr = <-drained:
	case <-time.After(pipeCloseGrace):
		// 后代进程仍持有从端，关闭主端结束读取。
		ptmx.Close()
		drainErr = <-drained
	}
	if drainErr != nil && waitErr == nil && !errors.Is(drainErr, os.ErrClosed) {
		waitErr = drainErr
	}
	text := strings.ReplaceAll(out.String(), "\r\n", "\n")
	return r.finish(ctx, cmd, text, "", waitErr, start)
}

// drain copies r into buf line by line as output arrives.
func (r *Runner) drain(stream string, rd io.Reader, buf *strings.Builder) error {
	br := bufio.NewReader(rd)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			buf.WriteString(line)
			r.opts.Log.Line(stream, strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
	}
}

func (r *Runner) spawnFailed(cmd *exec.Cmd, err error) Result {
	r.opts.Log.SpawnError(cmd.Path, err)
	return Result{Success: false, Error: err.Error()}
}

func (r *Runner) finish(ctx context.Context, cmd *exec.Cmd, stdout, stderr string, waitErr error, start time.Time) Result {
	res := Result{Stdout: stdout, Stderr: stderr}
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			res.ExitCode = &code
		}
	}
	res.Success = res.ExitCode != nil && *res.ExitCode == 0

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && r.opts.Timeout > 0:
		res.Success = false
		res.Error = fmt.Sprintf("timed out after %s", r.opts.Timeout)
	case ctx.Err() != nil:
		res.Success = false
		res.Error = ctx.Err().Error()
	case waitErr == nil, errors.As(waitErr, &exitErr), errors.Is(waitErr, exec.ErrWaitDelay):
	default:
		res.Error = waitErr.Error()
	}
	r.opts.Log.Exit(res.ExitCode, time.Since(start))
	return res
}
