package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/cameron-webmatter/buddystate/pkg/config"
	"github.com/cameron-webmatter/buddystate/pkg/store"
)

const newKeyOption = "(new key)"

var setCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a key in the state document",
	Long: `Write a value into the state document. Values are parsed as JSON and
fall back to a plain string. A running inspector with --watch picks the edit
up and pushes it to subscribed components. Missing arguments are prompted for.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadProject()
	if err != nil {
		return err
	}

	initial, err := config.LoadInitialState(cfg.State.File)
	if err != nil {
		return err
	}
	bus := store.NewEventBus(initial)

	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		prompt := &survey.Select{
			Message: "Select a key:",
			Options: append(bus.Keys(), newKeyOption),
		}
		if err := survey.AskOne(prompt, &key); err != nil {
			return err
		}
		if key == newKeyOption {
			if err := survey.AskOne(&survey.Input{Message: "Key:"}, &key, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
		}
	}

	var raw string
	if len(args) > 1 {
		raw = args[1]
	} else {
		current := ""
		if src, err := bus.Lookup(key); err == nil {
			current = encodeValue(src.Get())
		}
		prompt := &survey.Input{
			Message: fmt.Sprintf("Value for %s (JSON):", key),
			Default: current,
		}
		if err := survey.AskOne(prompt, &raw); err != nil {
			return err
		}
	}

	before := ""
	src, err := bus.Lookup(key)
	existed := err == nil
	switch {
	case existed:
		before = encodeValue(src.Get())
	case !errors.Is(err, store.ErrSourceNotFound):
		return err
	}

	value := parseValue(raw)
	bus.Update(key, value)

	if err := config.WriteInitialState(cfg.State.File, bus.Snapshot()); err != nil {
		return err
	}

	if !silent {
		out := cmd.OutOrStdout()
		if existed {
			fmt.Fprintf(out, "%s: %s -> %s\n", key, before, encodeValue(value))
		} else {
			fmt.Fprintf(out, "%s: (new) %s\n", key, encodeValue(value))
		}
	}
	return nil
}

// parseValue decodes raw as JSON, falling back to the raw string. Whole
// numbers stay integers so toml documents keep their types.
func parseValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	return normalizeNumbers(v)
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	default:
		return v
	}
}
