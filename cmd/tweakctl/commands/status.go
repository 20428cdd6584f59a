package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/logging"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status [tweak-id...]",
	Short: "Show the detected state of tweaks",
	Long: `Show which option each tweak is currently in, detected by reading the
live system. A tweak whose resources match none of its options is shown
as "custom"; a marker indicates tweaks with an unreverted change.

Before reporting, snapshots are reconciled against the live system:
snapshots whose tweak was changed outside tweakctl are removed, since
their baseline no longer describes a reachable state.`,
	Example: `  # Status of every tweak
  tweakctl status

  # Status of specific tweaks
  tweakctl status disable-telemetry dark-mode

  # JSON output for scripting
  tweakctl status --json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return runStatusWithWriter(cmd, args, os.Stdout)
}

func runStatusWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
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

	tweaks := cat.Tweaks()
	if len(args) > 0 {
		tweaks = make([]*catalog.Tweak, 0, len(args))
		for _, id := range args {
			t, err := cat.Get(id)
			if err != nil {
				return err
			}
			tweaks = append(tweaks, t)
		}
	}

	states := eng.DetectAll(tweaks)

	if statusJSON {
		type stateJSON struct {
			ID          string `json:"id"`
			Option      string `json:"option,omitempty"`
			Custom      bool   `json:"custom"`
			HasSnapshot bool   `json:"has_snapshot"`
		}
		out := make([]stateJSON, 0, len(tweaks))
		for _, t := range tweaks {
			st := states[t.ID]
			out = append(out, stateJSON{
				ID:          t.ID,
				Option:      st.OptionLabel,
				Custom:      !st.Matched(),
				HasSnapshot: st.HasSnapshot,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	p := paletteFor(w)
	for _, t := range tweaks {
		st := states[t.ID]

		option := p.gray + "custom" + p.reset
		if st.Matched() {
			option = p.green + st.OptionLabel + p.reset
		}
		marker := ""
		if st.HasSnapshot {
			marker = p.yellow + " *" + p.reset
		}
		fmt.Fprintf(w, "%-32s %s%s\n", t.ID, option, marker)
	}
	if !statusJSON {
		fmt.Fprintf(w, "\n%s* = has an unreverted change (revertable)%s\n", p.gray, p.reset)
	}
	return nil
}
