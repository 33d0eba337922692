package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"

	"ninja-mcp/internal/build"
	"ninja-mcp/internal/config"
	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/mcpclient"
	"ninja-mcp/internal/render"
	"ninja-mcp/internal/tui"
)

const renderWidth = 100

func clientMain(root rootArgs, cfg config.Config, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ok, err := runClient(ctx, root, cfg, args, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("client failed: %v", err)
	}
	if !ok {
		stop()
		os.Exit(1)
	}
}

// runClient 启动 host、列出工具并调用一次 compile。返回值表示构建是否成功。
func runClient(ctx context.Context, root rootArgs, cfg config.Config, args []string, out io.Writer, errOut *os.File) (bool, error) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	copyOut := fs.Bool("copy", false, "Copy the build report to the clipboard")
	workDir := fs.String("workdir", "", "Source checkout (default work_dir from config)")
	buildPath := fs.String("build-path", "", "Output directory (default build_path from config)")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	name := "webview"
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	target, err := resolveTarget(name)
	if err != nil {
		return false, err
	}
	req := build.Request{
		WorkDir:   config.ExpandHome(firstNonEmpty(*workDir, cfg.WorkDir)),
		BuildPath: firstNonEmpty(*buildPath, cfg.BuildPath),
		Target:    target,
	}

	cl, err := dial(ctx, root, cfg)
	if err != nil {
		return false, err
	}
	defer cl.Close()

	list, err := cl.Tools(ctx)
	if err != nil {
		return false, err
	}
	fmt.Fprintln(out, "Available tools:")
	fmt.Fprintln(out, render.ToolList(list, renderWidth))
	fmt.Fprintln(out, render.Header(req, renderWidth))

	var res *mcp.CallToolResult
	err = tui.Spin(ctx, errOut, "compiling "+string(target), func(ctx context.Context) error {
		var callErr error
		res, callErr = cl.Compile(ctx, req)
		return callErr
	})
	if err != nil {
		return false, err
	}

	text := mcpclient.ReportText(res)
	fmt.Fprintln(out, render.Frame(text))
	ok := !res.IsError
	if rep, found := mcpclient.StructuredReport(res); found {
		fmt.Fprintln(out, render.StatusLine(rep, renderWidth))
		ok = rep.OK()
	}
	if *copyOut {
		if err := clipboard.WriteAll(text); err != nil {
			log.Warnf("copy to clipboard failed: %v", err)
		} else {
			fmt.Fprintln(out, "(report copied to clipboard)")
		}
	}
	return ok, nil
}

func toolsMain(root rootArgs, cfg config.Config, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runTools(ctx, root, cfg, os.Stdout); err != nil {
		log.Fatalf("tools failed: %v", err)
	}
}

func runTools(ctx context.Context, root rootArgs, cfg config.Config, out io.Writer) error {
	cl, err := dial(ctx, root, cfg)
	if err != nil {
		return err
	}
	defer cl.Close()
	list, err := cl.Tools(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, render.ToolList(list, renderWidth))
	return nil
}

func dial(ctx context.Context, root rootArgs, cfg config.Config) (*mcpclient.Client, error) {
	command, err := serverCommand(root, cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("starting host: %s", strings.Join(command, " "))
	return mcpclient.Dial(ctx, mcpclient.DialOptions{Command: command, Log: logger.Named("mcpclient")})
}

// serverCommand 返回 host 启动命令；未配置时使用当前可执行文件加 serve，
// 并转发全局参数。
func serverCommand(root rootArgs, cfg config.Config) ([]string, error) {
	if len(cfg.ServerCommand) > 0 {
		return cfg.ServerCommand, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	command := append([]string{exe}, root.forward()...)
	return append(command, "serve"), nil
}

// resolveTarget 将命令行上的短名映射为构建目标，未知名称附带相近候选。
func resolveTarget(name string) (build.Target, error) {
	if t, ok := build.ParseTarget(name); ok {
		return t, nil
	}
	aliases := build.AliasNames()
	matches := fuzzy.Find(strings.ToLower(strings.TrimSpace(name)), aliases)
	if len(matches) > 0 {
		return "", fmt.Errorf("unknown target %q, did you mean %q?", name, matches[0].Str)
	}
	return "", fmt.Errorf("unknown target %q (choose from %s)", name, strings.Join(aliases, ", "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
