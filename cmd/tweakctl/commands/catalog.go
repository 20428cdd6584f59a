package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with the tweak catalog",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the tweak catalog",
	Long: `Load every catalog file and report validation errors: malformed YAML,
duplicate identifiers, unknown hives or value types, options that
declare no changes.

Exits zero only when the whole catalog is valid.`,
	Example: `  tweakctl catalog validate`,
	Args:    cobra.NoArgs,
	RunE:    runCatalogValidate,
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	return runCatalogValidateWithWriter(cmd, args, os.Stdout)
}

func runCatalogValidateWithWriter(_ *cobra.Command, _ []string, w io.Writer) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	p := paletteFor(w)
	fmt.Fprintf(w, "%s✓%s catalog valid: %d tweak(s)\n", p.green, p.reset, cat.Len())
	return nil
}
