package main

import (
	"os"

	"ninja-mcp/internal/config"
	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/tools"
)

var log = logger.Named("cli")

func main() {
	logger.Configure()

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("ignoring log_level: %v", err)
	}
	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}
	if toolsCloser, _, err := tools.SetupToolsLog(cfg.ToolsLogPath); err != nil {
		log.Warnf("failed to initialize tools log (%s): %v", cfg.ToolsLogPath, err)
	} else if toolsCloser != nil {
		defer toolsCloser.Close()
	}

	sub, args := "serve", rest
	if len(rest) > 0 {
		sub, args = rest[0], rest[1:]
	}
	switch sub {
	case "serve":
		serveMain(cfg, args)
	case "client":
		clientMain(root, cfg, args)
	case "tools":
		toolsMain(root, cfg, args)
	case "env":
		envMain(cfg, args)
	case "init-config":
		initConfigMain(root, args)
	default:
		log.Fatalf("unknown subcommand %q (serve, client, tools, env, init-config)", sub)
	}
}

func loadConfig(root rootArgs) (config.Config, error) {
	cfg, err := config.Load(root.cfgPath)
	if err != nil {
		return cfg, err
	}
	return config.ApplyKVOverrides(cfg, root.overrides), nil
}
