package build

import (
	"context"
	"fmt"
	"os"

	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/runner"
)

// DefaultDriver is the build orchestrator invoked for every compile.
const DefaultDriver = "autoninja"

// ProcessRunner runs one command to completion.
type ProcessRunner interface {
	Run(ctx context.Context, spec runner.Spec) runner.Result
}

// Options configures a Compiler.
type Options struct {
	Runner       ProcessRunner
	Driver       string
	AllowedRoots []string
	// Getwd reports the host working directory; os.Getwd when nil.
	Getwd func() (string, error)
	Log   *logger.LogEntry
}

// Compiler turns a Request into a directory check followed by one driver
// invocation. Each step spawns exactly one child process.
type Compiler struct {
	runner ProcessRunner
	driver string
	roots  []string
	getwd  func() (string, error)
	log    *logger.LogEntry
}

func NewCompiler(opts Options) *Compiler {
	if opts.Driver == "" {
		opts.Driver = DefaultDriver
	}
	if opts.Getwd == nil {
		opts.Getwd = os.Getwd
	}
	if opts.Log == nil {
		opts.Log = logger.Named("build")
	}
	return &Compiler{
		runner: opts.Runner,
		driver: opts.Driver,
		roots:  opts.AllowedRoots,
		getwd:  opts.Getwd,
		log:    opts.Log,
	}
}

// Spec returns the driver invocation for req.
func (c *Compiler) Spec(req Request) runner.Spec {
	return runner.Spec{
		Command: c.driver,
		Args:    []string{"-C", req.BuildPath, string(req.Target)},
		Dir:     req.WorkDir,
	}
}

// Check validates req and the allowed roots.
func (c *Compiler) Check(req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.CheckRoots(req)
}

// CheckRoots only enforces the allowed roots.
func (c *Compiler) CheckRoots(req Request) error {
	return checkRoots(req.WorkDir, c.roots)
}

func (c *Compiler) base(req Request) Report {
	return Report{
		WorkDir:   req.WorkDir,
		BuildPath: req.BuildPath,
		Target:    string(req.Target),
		Command:   c.Spec(req).CommandLine(),
	}
}

// Compile cds into req.WorkDir and, if that succeeds, runs the driver. Build
// failures are reported through the returned Report, never as errors.
func (c *Compiler) Compile(ctx context.Context, req Request) Report {
	cwd, err := c.getwd()
	if err != nil {
		cwd = ""
	}

	cdRes := c.runner.Run(ctx, runner.Spec{Command: "cd", Args: []string{req.WorkDir}, Dir: cwd})
	if !cdRes.Success {
		c.log.WithField("work_dir", req.WorkDir).Warnf("cd into work dir failed: %s", orDefault(cdRes.Error, cdRes.Stderr))
		return Report{
			Status:     StatusDirectoryUnreachable,
			WorkDir:    req.WorkDir,
			BuildPath:  req.BuildPath,
			Target:     string(req.Target),
			CurrentDir: cwd,
			Stdout:     cdRes.Stdout,
			Stderr:     cdRes.Stderr,
			ExitCode:   cdRes.ExitCode,
			Message:    cdRes.Error,
		}
	}

	res := c.runner.Run(ctx, c.Spec(req))
	rep := c.base(req)
	rep.Stdout = res.Stdout
	rep.Stderr = res.Stderr
	rep.ExitCode = res.ExitCode
	rep.Message = res.Error
	rep.Status = StatusFailed
	if res.Success {
		rep.Status = StatusSuccess
	}
	return rep
}

// Rejected builds the report for a request that failed Check.
func (c *Compiler) Rejected(req Request, err error) Report {
	rep := c.base(req)
	rep.Status = StatusRejected
	rep.Message = err.Error()
	return rep
}

// InternalError builds the report for a panic recovered while handling req.
func (c *Compiler) InternalError(req Request, recovered any, stack []byte) Report {
	rep := c.base(req)
	rep.Command = fmt.Sprintf("%s -C %s %s", c.driver,
		orDefault(req.BuildPath, "Unknown path"), orDefault(string(req.Target), "Unknown target"))
	rep.Status = StatusInternalError
	rep.Message = fmt.Sprint(recovered)
	rep.Stack = string(stack)
	return rep
}
