package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/logging"
	"github.com/tweakctl/tweakctl/internal/profile"
)

func init() {
	profileCmd.AddCommand(profileExportCmd)
	profileCmd.AddCommand(profileImportCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Export and import applied-tweak profiles",
	Long: `Export the set of applied tweaks to a portable TOML file, or replay
such a file on another machine.

A profile carries only tweak identifiers and option labels, never
captured state. Importing replays each entry through the normal apply
path, so the target machine captures its own baselines.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the applied tweaks to a profile file",
	Example: `  tweakctl profile export workstation.toml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileExport,
}

func runProfileExport(cmd *cobra.Command, args []string) error {
	return runProfileExportWithWriter(cmd, args, os.Stdout)
}

func runProfileExportWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	validateStartupSnapshots(eng, cat, logger)

	p, err := profile.Export(eng, cat)
	if err != nil {
		return err
	}
	if err := profile.Save(args[0], p); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d tweak(s) to %s\n", len(p.Tweaks), args[0])
	return nil
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replay a profile file through the apply path",
	Long: `Apply every entry of a profile file in order.

Entries are independent: a failing entry is reported and the remaining
entries still run. The command exits non-zero if any entry failed.`,
	Example: `  tweakctl profile import workstation.toml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileImport,
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	return runProfileImportWithWriter(cmd, args, os.Stdout)
}

func runProfileImportWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	validateStartupSnapshots(eng, cat, logger)

	p, err := profile.Load(args[0])
	if err != nil {
		return errors.NewUserError(err, "Check that the file is a tweakctl profile")
	}

	results := profile.Import(cmd.Context(), eng, cat, p)

	pal := paletteFor(w)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s✗%s %s -> %q: %v\n", pal.red, pal.reset, r.ID, r.Option, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s✓%s %s -> %q\n", pal.green, pal.reset, r.ID, r.Option)
	}

	if failed > 0 {
		return errors.NewPartialError(errors.Newf("%d of %d profile entries failed", failed, len(results)))
	}
	fmt.Fprintf(w, "Imported %d tweak(s).\n", len(results))
	return nil
}
