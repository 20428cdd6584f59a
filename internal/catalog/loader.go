package catalog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/winres"
	"github.com/tweakctl/tweakctl/pkg/fileutil"
)

// idPattern constrains tweak identifiers to lowercase slugs, which keeps
// them safe as snapshot file names.
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Catalog holds the loaded tweak definitions, ordered by identifier.
type Catalog struct {
	tweaks []*Tweak
	byID   map[string]*Tweak
}

// Load reads every .yaml/.yml file under dir. Each file holds one or more
// YAML documents, one tweak per document. A missing directory yields an
// empty catalog.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Tweak)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrap(err, "reading catalog directory")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := fileutil.ReadFileWithLimit(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", entry.Name())
		}
		if err := c.addFile(entry.Name(), data); err != nil {
			return nil, err
		}
	}

	sort.Slice(c.tweaks, func(i, j int) bool { return c.tweaks[i].ID < c.tweaks[j].ID })
	return c, nil
}

func (c *Catalog) addFile(name string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var t Tweak
		err := dec.Decode(&t)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "parsing %s", name)
		}
		if err := validateTweak(&t); err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		if _, dup := c.byID[t.ID]; dup {
			return errors.Newf("%s: duplicate tweak id %q", name, t.ID)
		}
		tweak := t
		c.byID[tweak.ID] = &tweak
		c.tweaks = append(c.tweaks, &tweak)
	}
}

// FromTweaks builds a validated catalog from already-constructed tweaks.
func FromTweaks(tweaks []*Tweak) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Tweak, len(tweaks))}
	for _, t := range tweaks {
		if err := validateTweak(t); err != nil {
			return nil, err
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, errors.Newf("duplicate tweak id %q", t.ID)
		}
		c.byID[t.ID] = t
		c.tweaks = append(c.tweaks, t)
	}
	sort.Slice(c.tweaks, func(i, j int) bool { return c.tweaks[i].ID < c.tweaks[j].ID })
	return c, nil
}

// Tweaks returns all tweaks ordered by identifier.
func (c *Catalog) Tweaks() []*Tweak {
	return c.tweaks
}

// Get resolves a tweak identifier.
func (c *Catalog) Get(id string) (*Tweak, error) {
	t, ok := c.byID[id]
	if !ok {
		return nil, errors.Wrapf(tweakerrors.ErrUnknownTweak, "%s", id)
	}
	return t, nil
}

// Len returns the number of loaded tweaks.
func (c *Catalog) Len() int {
	return len(c.tweaks)
}

func validateTweak(t *Tweak) error {
	if !idPattern.MatchString(t.ID) {
		return errors.Newf("invalid tweak id %q (want a lowercase slug)", t.ID)
	}
	if t.Name == "" {
		return errors.Newf("tweak %s: name is required", t.ID)
	}
	if len(t.Options) == 0 {
		return errors.Newf("tweak %s: at least one option is required", t.ID)
	}

	labels := make(map[string]bool, len(t.Options))
	for i := range t.Options {
		o := &t.Options[i]
		if o.Label == "" {
			return errors.Newf("tweak %s: option %d has no label", t.ID, i)
		}
		key := strings.ToLower(o.Label)
		if labels[key] {
			return errors.Newf("tweak %s: duplicate option label %q", t.ID, o.Label)
		}
		labels[key] = true

		if len(o.Registry) == 0 && len(o.Services) == 0 && len(o.Tasks) == 0 {
			return errors.Newf("tweak %s: option %q declares no changes", t.ID, o.Label)
		}
		for _, rc := range o.Registry {
			if !winres.ValidHive(rc.Hive) {
				return errors.Newf("tweak %s: option %q: unknown hive %q", t.ID, o.Label, rc.Hive)
			}
			if rc.Key == "" {
				return errors.Newf("tweak %s: option %q: registry change has no key", t.ID, o.Label)
			}
			if !rc.Absent && !winres.ValidKind(rc.Value.Kind) {
				return errors.Newf("tweak %s: option %q: %s has invalid value type", t.ID, o.Label, rc.Ref())
			}
		}
		for _, sc := range o.Services {
			if sc.Name == "" {
				return errors.Newf("tweak %s: option %q: service change has no name", t.ID, o.Label)
			}
			if !winres.ValidStartMode(sc.Startup) {
				return errors.Newf("tweak %s: option %q: service %s has invalid startup %q", t.ID, o.Label, sc.Name, sc.Startup)
			}
		}
		for _, tc := range o.Tasks {
			if tc.Name == "" {
				return errors.Newf("tweak %s: option %q: task change has no name", t.ID, o.Label)
			}
		}
	}
	return nil
}
