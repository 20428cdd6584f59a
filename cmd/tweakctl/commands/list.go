package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tweakctl/tweakctl/internal/catalog"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tweaks and their options",
	Long: `List every tweak in the catalog with its options.

The catalog is read from the "tweaks" directory beside the executable,
or from catalog_dir in the config file.`,
	Example: `  # List all tweaks
  tweakctl list

  # Machine-readable output
  tweakctl list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	return runListWithWriter(cmd, args, os.Stdout)
}

func runListWithWriter(_ *cobra.Command, _ []string, w io.Writer) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	if listJSON {
		type optionJSON struct {
			Label string `json:"label"`
		}
		type tweakJSON struct {
			ID          string       `json:"id"`
			Name        string       `json:"name"`
			Description string       `json:"description,omitempty"`
			Elevated    bool         `json:"elevated"`
			Options     []optionJSON `json:"options"`
		}
		out := make([]tweakJSON, 0, cat.Len())
		for _, t := range cat.Tweaks() {
			tj := tweakJSON{ID: t.ID, Name: t.Name, Description: t.Description, Elevated: t.Elevated}
			for _, o := range t.Options {
				tj.Options = append(tj.Options, optionJSON{Label: o.Label})
			}
			out = append(out, tj)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if cat.Len() == 0 {
		fmt.Fprintln(w, "No tweaks in the catalog.")
		return nil
	}

	p := paletteFor(w)
	for _, t := range cat.Tweaks() {
		elevated := ""
		if t.Elevated {
			elevated = p.yellow + " [elevated]" + p.reset
		}
		fmt.Fprintf(w, "%s%s%s%s\n", p.bold, t.ID, p.reset, elevated)
		if t.Description != "" {
			fmt.Fprintf(w, "  %s%s%s\n", p.gray, truncate(t.Description, 76), p.reset)
		}
		fmt.Fprintf(w, "  options: %s\n", strings.Join(optionLabels(t), ", "))
	}
	return nil
}

func optionLabels(t *catalog.Tweak) []string {
	labels := make([]string, len(t.Options))
	for i, o := range t.Options {
		labels[i] = o.Label
	}
	return labels
}
