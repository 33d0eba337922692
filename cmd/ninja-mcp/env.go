package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"ninja-mcp/internal/config"
	"ninja-mcp/internal/shellenv"
)

func envMain(cfg config.Config, args []string) {
	if err := runEnv(context.Background(), cfg, args, os.Stdout); err != nil {
		log.Fatalf("env failed: %v", err)
	}
}

// runEnv 打印 runner 将使用的环境。-only 只打印策略贡献的变量。
func runEnv(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("env", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	only := fs.Bool("only", false, "Print only variables found by env_strategy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}
	strategy, _ := shellenv.ParseStrategy(cfg.EnvStrategy)
	fmt.Fprintf(out, "# strategy: %s\n", strategy)
	if strategy == shellenv.StrategyProfile {
		for _, p := range resolver.ProfilePaths() {
			fmt.Fprintf(out, "# profile: %s\n", p)
		}
	}

	env := resolver.Resolve(ctx)
	if *only {
		env = resolver.Lookup(ctx)
	}
	for _, kv := range shellenv.Environ(env) {
		fmt.Fprintln(out, kv)
	}
	return nil
}

func initConfigMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	_ = fs.Parse(args)

	path, err := config.WriteDefault(root.cfgPath, *force)
	if err != nil {
		log.Fatalf("init-config failed: %v", err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", path)
}
