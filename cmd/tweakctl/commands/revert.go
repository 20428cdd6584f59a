package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/logging"
)

func init() {
	rootCmd.AddCommand(revertCmd)
}

var revertCmd = &cobra.Command{
	Use:   "revert <tweak-id>",
	Short: "Restore a tweak's captured pre-change state",
	Long: `Restore the state captured when the tweak was first applied.

Registry values are restored all-or-nothing: if any write fails, the
values already restored are put back and the command fails without
touching services or tasks. Service and task restores are best-effort;
failures are listed and the snapshot is kept so the command can be run
again to retry just the failed entries.

On full success the snapshot is removed.`,
	Example: `  # Revert a tweak
  tweakctl revert disable-telemetry

  # See which tweaks can be reverted
  tweakctl snapshots list`,
	Args: cobra.ExactArgs(1),
	RunE: runRevert,
}

func runRevert(cmd *cobra.Command, args []string) error {
	return runRevertWithWriter(cmd, args, os.Stdout)
}

func runRevertWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
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

	id := args[0]
	res, err := eng.Revert(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNoSnapshot) {
			return errors.NewUserError(err, "Run 'tweakctl snapshots list' to see revertable tweaks")
		}
		return err
	}

	p := paletteFor(w)
	if res.Success() {
		fmt.Fprintf(w, "%s✓%s %s reverted to its captured state\n", p.green, p.reset, id)
		return nil
	}

	fmt.Fprintf(w, "%s!%s %s partially reverted; %d resource(s) failed:\n",
		p.yellow, p.reset, id, len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  %s✗%s %s\n", p.red, p.reset, f)
	}
	return errors.NewPartialError(errors.Newf("%d resource(s) failed to restore", len(res.Failures)))
}
