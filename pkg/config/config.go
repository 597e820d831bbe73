package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const FileName = "buddystate.toml"

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func LoadFromDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.State.File) {
		cfg.State.File = filepath.Join(dir, cfg.State.File)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case LogDebug, LogInfo, LogWarn, LogError:
	case "":
		c.Log.Level = LogInfo
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	if c.State.File == "" {
		c.State.File = "state.toml"
	}
	if _, err := FormatOf(c.State.File); err != nil {
		return err
	}

	if c.Inspector.Port == 0 {
		c.Inspector.Port = 4400
	}
	if c.Inspector.Port < 0 || c.Inspector.Port > 65535 {
		return fmt.Errorf("invalid inspector port: %d", c.Inspector.Port)
	}

	if c.Inspector.Host == "" {
		c.Inspector.Host = "localhost"
	}

	if c.Inspector.Path == "" {
		c.Inspector.Path = "/__buddystate"
	}
	if !strings.HasPrefix(c.Inspector.Path, "/") {
		c.Inspector.Path = "/" + c.Inspector.Path
	}
	c.Inspector.Path = strings.TrimSuffix(c.Inspector.Path, "/")

	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("invalid watch debounce: %dms", c.Watch.DebounceMs)
	}

	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Inspector.Host, c.Inspector.Port)
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
