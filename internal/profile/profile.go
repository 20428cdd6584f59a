package profile

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/engine"
	"github.com/tweakctl/tweakctl/pkg/fileutil"
)

// Version is the profile file format version.
const Version = 1

// Profile is a portable record of applied tweaks: which tweaks are active
// and in which option. It carries no captured state; importing a profile
// replays the tweaks through the normal apply path on the target machine,
// which captures that machine's own baselines.
type Profile struct {
	Version    int       `toml:"version"`
	ExportedAt time.Time `toml:"exported_at"`
	OSVersion  string    `toml:"os_version"`
	Tweaks     []Entry   `toml:"tweaks"`
}

// Entry names one applied tweak and its option, by label so profiles stay
// readable and survive option reordering.
type Entry struct {
	ID     string `toml:"id"`
	Option string `toml:"option"`
}

// Export builds a profile from the engine's live snapshots. The recorded
// option comes from state detection where possible, falling back to the
// snapshot's option pointer when the live state has drifted mid-option.
func Export(e *engine.Engine, cat *catalog.Catalog) (*Profile, error) {
	ids, err := e.Store().List()
	if err != nil {
		return nil, errors.Wrap(err, "listing snapshots")
	}

	p := &Profile{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		OSVersion:  e.OSVersion(),
	}
	for _, id := range ids {
		t, err := cat.Get(id)
		if err != nil {
			// Snapshot for a tweak the catalog no longer defines; a profile
			// entry for it could never be replayed.
			continue
		}
		st, err := e.DetectTweakState(t)
		if err != nil {
			return nil, errors.Wrapf(err, "detecting %s", id)
		}

		label := st.OptionLabel
		if !st.Matched() {
			snap, err := e.Store().Load(id)
			if err != nil {
				return nil, err
			}
			label = snap.OptionLabel
		}
		p.Tweaks = append(p.Tweaks, Entry{ID: id, Option: label})
	}
	return p, nil
}

// Save writes the profile as TOML.
func Save(path string, p *Profile) error {
	if err := fileutil.AtomicWriteTOML(path, p); err != nil {
		return errors.Wrap(err, "writing profile")
	}
	return nil
}

// Load reads and validates a TOML profile.
func Load(path string) (*Profile, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading profile")
	}
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "parsing profile")
	}
	if p.Version != Version {
		return nil, errors.Newf("unsupported profile version %d (want %d)", p.Version, Version)
	}
	return &p, nil
}

// ImportResult reports the outcome of replaying one profile entry.
type ImportResult struct {
	ID     string
	Option string
	Err    error
}

// Import replays a profile through the engine. Entries are applied in
// file order; a failing entry is reported and the remaining entries still
// run, since tweaks are independent.
func Import(ctx context.Context, e *engine.Engine, cat *catalog.Catalog, p *Profile) []ImportResult {
	results := make([]ImportResult, 0, len(p.Tweaks))
	for _, entry := range p.Tweaks {
		results = append(results, ImportResult{
			ID:     entry.ID,
			Option: entry.Option,
			Err:    importOne(ctx, e, cat, entry),
		})
	}
	return results
}

func importOne(ctx context.Context, e *engine.Engine, cat *catalog.Catalog, entry Entry) error {
	t, err := cat.Get(entry.ID)
	if err != nil {
		return err
	}
	idx, err := t.OptionIndex(entry.Option)
	if err != nil {
		return err
	}
	_, err = e.Apply(ctx, t, idx)
	return err
}
