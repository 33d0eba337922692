package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ninja-mcp/internal/build"
	"ninja-mcp/internal/config"
	"ninja-mcp/internal/i18n"
	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/mcpserver"
	"ninja-mcp/internal/runner"
	"ninja-mcp/internal/shellenv"
	"ninja-mcp/internal/tools"
	"ninja-mcp/internal/tools/handlers"
)

func serveMain(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := newRegistry(cfg)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	srv := mcpserver.New(reg, logger.Named("mcpserver"))
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("serve failed: %v", err)
	}
}

func newResolver(cfg config.Config) (*shellenv.Resolver, error) {
	strategy, err := shellenv.ParseStrategy(cfg.EnvStrategy)
	if err != nil {
		return nil, err
	}
	return shellenv.New(shellenv.Options{
		Strategy:     strategy,
		Profiles:     cfg.Profiles,
		Shell:        cfg.Shell,
		EnvFile:      config.ExpandHome(cfg.EnvFile),
		FallbackPath: cfg.FallbackPath,
		Language:     i18n.Normalize(cfg.Language),
		Log:          logger.Named("shellenv"),
	}), nil
}

func newRunner(cfg config.Config) (*runner.Runner, error) {
	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}
	return runner.New(runner.Options{
		Shell:     cfg.Shell,
		ShellArgs: cfg.ShellArgs,
		Profiles:  cfg.Profiles,
		Language:  i18n.Normalize(cfg.Language),
		PTY:       cfg.PTY,
		Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
		Env:       resolver,
		Log:       logger.NewProcessLogger(logger.Named("runner")),
	}), nil
}

func newRegistry(cfg config.Config) (*tools.Registry, error) {
	r, err := newRunner(cfg)
	if err != nil {
		return nil, err
	}
	roots := make([]string, 0, len(cfg.AllowedRoots))
	for _, root := range cfg.AllowedRoots {
		roots = append(roots, config.ExpandHome(root))
	}
	compiler := build.NewCompiler(build.Options{
		Runner:       r,
		Driver:       cfg.Driver,
		AllowedRoots: roots,
		Log:          logger.Named("build"),
	})
	return tools.NewRegistry(handlers.NewCompileHandler(compiler, cfg.StrictArgs)), nil
}
