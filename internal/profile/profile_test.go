package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/engine"
	"github.com/tweakctl/tweakctl/internal/logging"
	"github.com/tweakctl/tweakctl/internal/snapshot"
	"github.com/tweakctl/tweakctl/internal/winres"
)

var darkRef = winres.ValueRef{
	Hive: winres.HiveCurrentUser,
	Key:  `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`,
	Name: "AppsUseLightTheme",
}

func darkModeTweak() *catalog.Tweak {
	return &catalog.Tweak{
		ID:   "dark-mode",
		Name: "Dark Mode",
		Options: []catalog.Option{
			{Label: "Light", Registry: []catalog.RegistryChange{
				{Hive: darkRef.Hive, Key: darkRef.Key, Name: darkRef.Name, Value: winres.DwordValue(1)},
			}},
			{Label: "Dark", Registry: []catalog.RegistryChange{
				{Hive: darkRef.Hive, Key: darkRef.Key, Name: darkRef.Name, Value: winres.DwordValue(0)},
			}},
		},
	}
}

func newEngine(t *testing.T, sys *winres.Memory) *engine.Engine {
	t.Helper()
	store := snapshot.NewStore(t.TempDir())
	return engine.New(store, sys.Accessors(), engine.WithLogger(logging.ForTest(t)))
}

func TestExportImport_RoundTrip(t *testing.T) {
	tw := darkModeTweak()
	cat, err := catalog.FromTweaks([]*catalog.Tweak{tw})
	require.NoError(t, err)

	// Source machine: light theme, then apply Dark.
	src := winres.NewMemory()
	src.SetValue(darkRef, winres.DwordValue(1))
	srcEngine := newEngine(t, src)
	_, err = srcEngine.Apply(context.Background(), tw, 1)
	require.NoError(t, err)

	p, err := Export(srcEngine, cat)
	require.NoError(t, err)
	require.Len(t, p.Tweaks, 1)
	assert.Equal(t, "dark-mode", p.Tweaks[0].ID)
	assert.Equal(t, "Dark", p.Tweaks[0].Option)

	path := filepath.Join(t.TempDir(), "workstation.toml")
	require.NoError(t, Save(path, p))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Tweaks, loaded.Tweaks)

	// Target machine starts light too; the import replays the apply and
	// captures the target's own baseline.
	dst := winres.NewMemory()
	dst.SetValue(darkRef, winres.DwordValue(1))
	dstEngine := newEngine(t, dst)

	results := Import(context.Background(), dstEngine, cat, loaded)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)

	v, err := dst.ReadValue(darkRef)
	require.NoError(t, err)
	assert.Equal(t, winres.DwordValue(0), v)
	assert.True(t, dstEngine.Store().Exists("dark-mode"))
}

func TestImport_UnknownEntriesDoNotAbort(t *testing.T) {
	tw := darkModeTweak()
	cat, err := catalog.FromTweaks([]*catalog.Tweak{tw})
	require.NoError(t, err)

	sys := winres.NewMemory()
	sys.SetValue(darkRef, winres.DwordValue(1))
	e := newEngine(t, sys)

	p := &Profile{Version: Version, Tweaks: []Entry{
		{ID: "no-such-tweak", Option: "On"},
		{ID: "dark-mode", Option: "NoSuchOption"},
		{ID: "dark-mode", Option: "dark"}, // labels resolve case-insensitively
	}}

	results := Import(context.Background(), e, cat, p)
	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	v, err := sys.ReadValue(darkRef)
	require.NoError(t, err)
	assert.Equal(t, winres.DwordValue(0), v)
}

func TestLoad_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.toml")
	require.NoError(t, Save(path, &Profile{Version: 99}))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported profile version")
}
