package config

type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

type Config struct {
	State     StateConfig     `toml:"state"`
	Inspector InspectorConfig `toml:"inspector"`
	Watch     WatchConfig     `toml:"watch"`
	Log       LogConfig       `toml:"log"`
}

type StateConfig struct {
	File string `toml:"file"`
}

type InspectorConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	Path           string   `toml:"path"`
	AllowLocalhost bool     `toml:"allowLocalhost"`
	AllowOrigins   []string `toml:"allowOrigins"`
}

type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMs int  `toml:"debounceMs"`
}

type LogConfig struct {
	Level LogLevel `toml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		State: StateConfig{
			File: "state.toml",
		},
		Inspector: InspectorConfig{
			Host:           "localhost",
			Port:           4400,
			Path:           "/__buddystate",
			AllowLocalhost: true,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 100,
		},
		Log: LogConfig{
			Level: LogInfo,
		},
	}
}
