package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrExists is returned by WriteDefault when the target file is already present.
var ErrExists = errors.New("config file already exists")

func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// WriteDefault 写出默认配置，返回实际路径。force=false 时不覆盖已有文件。
func WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w", path, ErrExists)
		}
	}
	return path, Save(path, Default())
}
