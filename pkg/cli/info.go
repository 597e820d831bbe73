package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cameron-webmatter/buddystate/pkg/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display environment information",
	Long:  `Display useful information about your current buddystate setup`,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, cwd, err := loadProject()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "buddystate               v%s\n", Version)
	fmt.Fprintf(out, "Go                       %s\n", runtime.Version())
	fmt.Fprintf(out, "System                   %s (%s)\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Working Directory        %s\n", cwd)

	configPath := cfgFile
	if configPath == "" {
		configPath = filepath.Join(cwd, config.FileName)
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config                   %s\n", configPath)
	}

	if _, err := os.Stat(cfg.State.File); err == nil {
		fmt.Fprintf(out, "State                    %s\n", cfg.State.File)
	} else {
		fmt.Fprintf(out, "State                    %s (missing)\n", cfg.State.File)
	}

	fmt.Fprintf(out, "Inspector                %s%s\n", cfg.Addr(), cfg.Inspector.Path)
	fmt.Fprintf(out, "Watch                    %v\n", cfg.Watch.Enabled)

	return nil
}
