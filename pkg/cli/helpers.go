package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cameron-webmatter/buddystate/pkg/config"
)

func projectDir() (string, error) {
	if rootDir != "" {
		return rootDir, nil
	}
	return os.Getwd()
}

// loadProject resolves the config from --config or the project directory.
func loadProject() (*config.Config, string, error) {
	cwd, err := projectDir()
	if err != nil {
		return nil, "", err
	}

	if cfgFile == "" {
		cfg, err := config.LoadFromDir(cwd)
		if err != nil {
			return nil, "", fmt.Errorf("load config: %w", err)
		}
		return cfg, cwd, nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	if !filepath.IsAbs(cfg.State.File) {
		cfg.State.File = filepath.Join(filepath.Dir(cfgFile), cfg.State.File)
	}
	return cfg, cwd, nil
}

func newLogger(level config.LogLevel) (*zap.Logger, error) {
	if silent {
		return zap.NewNop(), nil
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.DisableStacktrace = true
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	lvl, err := zapcore.ParseLevel(string(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}
