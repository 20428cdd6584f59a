package commands

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/config"
	"github.com/tweakctl/tweakctl/internal/elevate"
	"github.com/tweakctl/tweakctl/internal/engine"
	"github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/logging"
	"github.com/tweakctl/tweakctl/internal/snapshot"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// palette holds the ANSI sequences for one output writer. Every field is
// empty when the writer is not a color-capable terminal, so callers
// format unconditionally.
type palette struct {
	reset, bold, green, yellow, red, gray string
}

// paletteFor returns the palette for w. Color is suppressed when w is not
// a TTY, when NO_COLOR is set, or when TERM=dumb.
func paletteFor(w io.Writer) palette {
	if !logging.SupportsColor(w) {
		return palette{}
	}
	return palette{
		reset:  "\033[0m",
		bold:   "\033[1m",
		green:  "\033[32m",
		yellow: "\033[33m",
		red:    "\033[31m",
		gray:   "\033[90m",
	}
}

// appConfig is the loaded configuration, set by initConfig.
var appConfig *config.Config

func effectiveConfig() *config.Config {
	if appConfig == nil {
		return &config.Config{Version: 1, OSVersion: config.DefaultOSVersion}
	}
	return appConfig
}

// loadCatalog reads the tweak catalog from the configured directory.
func loadCatalog() (*catalog.Catalog, error) {
	dir, err := effectiveConfig().ResolveCatalogDir()
	if err != nil {
		return nil, errors.NewSystemError(err, "could not locate the tweak catalog directory")
	}
	cat, err := catalog.Load(dir)
	if err != nil {
		return nil, errors.NewUserError(err, "Fix the catalog file and run 'tweakctl catalog validate'")
	}
	return cat, nil
}

// newEngine builds the engine over the live system accessors.
func newEngine(logger *slog.Logger) (*engine.Engine, error) {
	cfg := effectiveConfig()

	sys, err := winres.NewSystem()
	if err != nil {
		return nil, errors.NewSystemError(err, "tweakctl manages Windows resources and must run on Windows")
	}

	dir, err := cfg.ResolveSnapshotDir()
	if err != nil {
		return nil, errors.NewSystemError(err, "could not locate the snapshot directory")
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithOSVersion(cfg.OSVersion),
	}
	if !cfg.DisableElevation {
		runner := elevate.NewShell()
		opts = append(opts,
			engine.WithElevated(elevate.Accessors(sys, runner)),
			engine.WithElevatedHookRunner(runner),
		)
	}

	return engine.New(snapshot.NewStore(dir), sys, opts...), nil
}

// validateStartupSnapshots reconciles snapshots against the live system.
// Startup validation failures are logged, never fatal.
func validateStartupSnapshots(e *engine.Engine, cat *catalog.Catalog, logger *slog.Logger) {
	removed, err := e.ValidateSnapshots(cat)
	if err != nil {
		logger.Warn("snapshot validation failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("removed stale snapshots", "count", removed)
	}
}

// resolveOption maps an option argument, either a label or a numeric
// index, to the option's index within the tweak.
func resolveOption(t *catalog.Tweak, arg string) (int, error) {
	if idx, err := t.OptionIndex(arg); err == nil {
		return idx, nil
	}
	if idx, err := strconv.Atoi(arg); err == nil {
		if _, oerr := t.Option(idx); oerr == nil {
			return idx, nil
		}
	}
	return 0, errors.NewUserError(
		errors.Wrapf(errors.ErrUnknownOption, "%s has no option %q", t.ID, arg),
		"Run 'tweakctl list' to see each tweak's options")
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
