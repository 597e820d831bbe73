package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cameron-webmatter/buddystate/pkg/config"
	"github.com/cameron-webmatter/buddystate/pkg/store"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the initial state as the registry sees it",
	Long:  `Load the state document into a registry and print every key with its value`,
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "text", "output format: text, json, markdown, or html")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadProject()
	if err != nil {
		return err
	}

	initial, err := config.LoadInitialState(cfg.State.File)
	if err != nil {
		return err
	}

	return renderState(cmd.OutOrStdout(), store.NewEventBus(initial), dumpFormat)
}

func renderState(w io.Writer, bus *store.EventBus, format string) error {
	switch format {
	case "text":
		for _, key := range bus.Keys() {
			src, _ := bus.GetSource(key)
			fmt.Fprintf(w, "%-24s %s\n", key, encodeValue(src.Get()))
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bus.Snapshot())
	case "markdown":
		_, err := io.WriteString(w, markdownTable(bus))
		return err
	case "html":
		var buf bytes.Buffer
		md := goldmark.New(goldmark.WithExtensions(extension.Table))
		if err := md.Convert([]byte(markdownTable(bus)), &buf); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown format: %s (must be text, json, markdown, or html)", format)
	}
}

func markdownTable(bus *store.EventBus) string {
	var sb strings.Builder
	sb.WriteString("| Key | Value |\n")
	sb.WriteString("| --- | --- |\n")
	for _, key := range bus.Keys() {
		src, _ := bus.GetSource(key)
		fmt.Fprintf(&sb, "| %s | `%s` |\n", escapeCell(key), escapeCell(encodeValue(src.Get())))
	}
	return sb.String()
}

func encodeValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
