package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the persisted config file schema (~/.ninja-mcp/config.toml).
type Config struct {
	Language     string `toml:"language"`
	LogLevel     string `toml:"log_level"`
	LogPath      string `toml:"log_path"`
	ToolsLogPath string `toml:"tools_log_path"`

	// Process runner.
	Shell       string   `toml:"shell"`
	ShellArgs   []string `toml:"shell_args"`
	Driver      string   `toml:"driver"`
	PTY         bool     `toml:"pty"`
	TimeoutSecs int      `toml:"timeout_secs"`

	// Environment resolution.
	EnvStrategy  string   `toml:"env_strategy"`
	EnvFile      string   `toml:"env_file"`
	Profiles     []string `toml:"profiles"`
	FallbackPath []string `toml:"fallback_path"`

	// Compile tool.
	StrictArgs   bool     `toml:"strict_args"`
	AllowedRoots []string `toml:"allowed_roots"`

	// Client.
	WorkDir       string   `toml:"work_dir"`
	BuildPath     string   `toml:"build_path"`
	ServerCommand []string `toml:"server_command"`

	Source string `toml:"-"`
}

// DefaultFallbackPath 追加到 PATH 末尾的常见二进制目录。
var DefaultFallbackPath = []string{
	"/usr/local/bin",
	"/usr/bin",
	"/bin",
	"/usr/sbin",
	"/sbin",
	"/opt/homebrew/bin",
}

func Default() Config {
	return Config{
		Language:     "zh",
		LogLevel:     "info",
		LogPath:      "logs/ninja-mcp.log",
		ToolsLogPath: "logs/tools.log",
		Shell:        "/bin/zsh",
		ShellArgs:    []string{"-l", "-c"},
		Driver:       "autoninja",
		EnvStrategy:  "profile",
		Profiles:     []string{".zprofile", ".zshrc"},
		FallbackPath: append([]string(nil), DefaultFallbackPath...),
		StrictArgs:   true,
		WorkDir:      "~/edge3/src",
		BuildPath:    "out/release_x64",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ninja-mcp", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("NINJA_MCP_LOG_LEVEL")); env != "" {
		cfg.LogLevel = env
	}
	if env := strings.TrimSpace(os.Getenv("NINJA_MCP_SHELL")); env != "" {
		cfg.Shell = env
	}
	if env := strings.TrimSpace(os.Getenv("NINJA_MCP_DRIVER")); env != "" {
		cfg.Driver = env
	}
	return cfg
}

// ExpandHome 将开头的 ~ 展开为用户主目录。
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
