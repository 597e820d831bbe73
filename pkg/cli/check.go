package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cameron-webmatter/buddystate/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the config and state document for errors",
	Long:  `Validate buddystate.toml and parse the state document it points to`,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, _, err := loadProject()
	if err != nil {
		return err
	}

	if !silent {
		fmt.Fprintln(out, "Checking state document...")
	}

	initial, err := config.LoadInitialState(cfg.State.File)
	if err != nil {
		return fmt.Errorf("check %s: %w", cfg.State.File, err)
	}

	if !silent {
		keys := make([]string, 0, len(initial))
		for key := range initial {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		if len(keys) == 0 {
			fmt.Fprintf(out, "Warning: %s defines no keys\n", cfg.State.File)
			return nil
		}
		fmt.Fprintf(out, "OK: %d key(s): %v\n", len(keys), keys)
	}

	return nil
}
