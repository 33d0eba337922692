package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// List values are comma separated; unknown keys and malformed values are ignored.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "language":
			cfg.Language = val
		case "log_level":
			cfg.LogLevel = val
		case "log_path":
			cfg.LogPath = val
		case "tools_log_path":
			cfg.ToolsLogPath = val
		case "shell":
			cfg.Shell = val
		case "shell_args":
			cfg.ShellArgs = splitList(val)
		case "driver":
			cfg.Driver = val
		case "pty":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.PTY = b
			}
		case "timeout_secs":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.TimeoutSecs = n
			}
		case "env_strategy":
			cfg.EnvStrategy = val
		case "env_file":
			cfg.EnvFile = val
		case "profiles":
			cfg.Profiles = splitList(val)
		case "fallback_path":
			cfg.FallbackPath = splitList(val)
		case "strict_args":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.StrictArgs = b
			}
		case "allowed_roots":
			cfg.AllowedRoots = splitList(val)
		case "work_dir":
			cfg.WorkDir = val
		case "build_path":
			cfg.BuildPath = val
		case "server_command":
			cfg.ServerCommand = splitList(val)
		}
	}
	return cfg
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
