package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/paths"
	"github.com/tweakctl/tweakctl/pkg/fileutil"
)

// Store persists one snapshot record per tweak identifier as a JSON file
// in a single directory. All writes go through the atomic temp+rename
// path so a crash mid-write cannot corrupt an existing record.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created lazily
// on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// fileFor maps a tweak identifier to its record path. Identifiers are
// catalog-validated slugs; the replacement is a guard against path
// separators sneaking into file names.
func (s *Store) fileFor(tweakID string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, tweakID)
	return filepath.Join(s.dir, safe+".json")
}

// Save writes the snapshot record for its tweak, overwriting any existing
// record. The store directory is created if missing.
func (s *Store) Save(snap *Snapshot) error {
	if snap.TweakID == "" {
		return errors.New("snapshot has no tweak id")
	}
	if snap.SchemaVersion == 0 {
		snap.SchemaVersion = SchemaVersion
	}
	if err := paths.EnsureDir(s.dir, 0); err != nil {
		return errors.Wrap(err, "creating snapshot directory")
	}
	if err := fileutil.AtomicWriteJSON(s.fileFor(snap.TweakID), snap); err != nil {
		return errors.Wrapf(err, "saving snapshot for %s", snap.TweakID)
	}
	return nil
}

// Load reads the snapshot record for a tweak.
// Returns ErrNoSnapshot when no record exists and ErrCorruptSnapshot when
// a record exists but cannot be read or parsed.
func (s *Store) Load(tweakID string) (*Snapshot, error) {
	data, err := os.ReadFile(s.fileFor(tweakID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(tweakerrors.ErrNoSnapshot, "%s", tweakID)
		}
		return nil, errors.Wrapf(tweakerrors.ErrCorruptSnapshot, "reading %s: %v", tweakID, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(tweakerrors.ErrCorruptSnapshot, "parsing %s: %v", tweakID, err)
	}
	if snap.TweakID == "" {
		return nil, errors.Wrapf(tweakerrors.ErrCorruptSnapshot, "%s: record has no tweak id", tweakID)
	}
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrapf(tweakerrors.ErrCorruptSnapshot, "%s: %v", tweakID, err)
	}
	return &snap, nil
}

// Exists reports whether a snapshot record exists for the tweak.
func (s *Store) Exists(tweakID string) bool {
	_, err := os.Stat(s.fileFor(tweakID))
	return err == nil
}

// Delete removes the snapshot record for a tweak.
// Deleting a missing record is not an error.
func (s *Store) Delete(tweakID string) error {
	err := os.Remove(s.fileFor(tweakID))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting snapshot for %s", tweakID)
	}
	return nil
}

// UpdateMetadata rewrites only the option pointer fields of an existing
// record, leaving the captured resource entries untouched. This is how an
// option switch is recorded without losing the original baseline.
func (s *Store) UpdateMetadata(tweakID string, optionIndex int, optionLabel string) error {
	snap, err := s.Load(tweakID)
	if err != nil {
		return err
	}
	snap.OptionIndex = optionIndex
	snap.OptionLabel = optionLabel
	return s.Save(snap)
}

// List enumerates the tweak identifiers with a live snapshot, sorted.
// A missing store directory is an empty store, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading snapshot directory")
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		// Read the record rather than trusting the file name; the id is
		// authoritative and corrupt files must not surface as phantom tweaks.
		snap, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			if errors.Is(err, tweakerrors.ErrCorruptSnapshot) {
				return nil, err
			}
			continue
		}
		ids = append(ids, snap.TweakID)
	}
	sort.Strings(ids)
	return ids, nil
}
