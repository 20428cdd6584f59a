package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweakctl/tweakctl/internal/logging"
)

var applyDryRun bool

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false,
		"show what would change without touching anything")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply <tweak-id> <option>",
	Short: "Apply a tweak option",
	Long: `Apply a tweak option by label (case-insensitive) or index.

On the first apply the prior state of every touched resource is captured
into a snapshot before anything changes. Applying a different option
later keeps that original baseline; reverting always returns to the
pre-first-apply state.

If any resource change fails mid-apply, the tweak is rolled back to its
previous state before the error is reported. Applying the option the
system is already in does nothing.`,
	Example: `  # Apply by option label
  tweakctl apply disable-telemetry Disabled

  # Apply by option index
  tweakctl apply disable-telemetry 1

  # Preview the resource changes
  tweakctl apply disable-telemetry Disabled --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	return runApplyWithWriter(cmd, args, os.Stdout)
}

func runApplyWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
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

	t, err := cat.Get(args[0])
	if err != nil {
		return err
	}
	idx, err := resolveOption(t, args[1])
	if err != nil {
		return err
	}

	if applyDryRun {
		plan, err := eng.Plan(t, idx)
		if err != nil {
			return err
		}
		if len(plan) == 0 {
			fmt.Fprintf(w, "%s is already in option %q; nothing to do.\n", t.ID, t.Options[idx].Label)
			return nil
		}
		fmt.Fprintf(w, "Applying %q to %s would change:\n", t.Options[idx].Label, t.ID)
		for _, c := range plan {
			fmt.Fprintf(w, "  %s\n", c)
		}
		return nil
	}

	res, err := eng.Apply(cmd.Context(), t, idx)
	if err != nil {
		return err
	}

	p := paletteFor(w)
	switch {
	case res.NoOp:
		fmt.Fprintf(w, "%s is already in option %q; nothing changed.\n", t.ID, res.OptionLabel)
	case res.Switched:
		fmt.Fprintf(w, "%s✓%s %s switched to %q (original baseline kept)\n",
			p.green, p.reset, t.ID, res.OptionLabel)
	default:
		fmt.Fprintf(w, "%s✓%s %s set to %q (baseline captured)\n",
			p.green, p.reset, t.ID, res.OptionLabel)
	}
	return nil
}
