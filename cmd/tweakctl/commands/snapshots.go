package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweakctl/tweakctl/internal/logging"
)

func init() {
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsValidateCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect and reconcile captured snapshots",
	Long: `Inspect the snapshots recording each tweak's pre-change state.

A snapshot exists for exactly the tweaks with an unreverted change; its
presence is what makes a tweak revertable.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tweaks with a captured snapshot",
	Example: `  # See which tweaks can be reverted
  tweakctl snapshots list`,
	Args: cobra.NoArgs,
	RunE: runSnapshotsList,
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	return runSnapshotsListWithWriter(cmd, args, os.Stdout)
}

func runSnapshotsListWithWriter(cmd *cobra.Command, _ []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}

	ids, err := eng.Store().List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No snapshots; no tweak has an unreverted change.")
		return nil
	}

	for _, id := range ids {
		snap, err := eng.Store().Load(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-32s option=%q captured=%s resources=%d\n",
			id, snap.OptionLabel,
			snap.CreatedAt.Format("2006-01-02 15:04"),
			len(snap.Registry)+len(snap.Services)+len(snap.Tasks))
	}
	return nil
}

var snapshotsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Remove snapshots invalidated by outside changes",
	Long: `Check every snapshot against the live system and remove those whose
tweak no longer matches any known option.

Such a tweak was modified outside tweakctl, so its captured baseline no
longer describes a state the machine can meaningfully be returned to.`,
	Example: `  tweakctl snapshots validate`,
	Args:    cobra.NoArgs,
	RunE:    runSnapshotsValidate,
}

func runSnapshotsValidate(cmd *cobra.Command, args []string) error {
	return runSnapshotsValidateWithWriter(cmd, args, os.Stdout)
}

func runSnapshotsValidateWithWriter(cmd *cobra.Command, _ []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	eng, err := newEngine(logger)
	if err != nil {
		return err
	}

	removed, err := eng.ValidateSnapshots(cat)
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Fprintln(w, "All snapshots are consistent with the live system.")
		return nil
	}
	fmt.Fprintf(w, "Removed %d stale snapshot(s).\n", removed)
	return nil
}
