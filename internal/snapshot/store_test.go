package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/winres"
)

func sampleSnapshot(id string) *Snapshot {
	v := winres.DwordValue(1)
	return &Snapshot{
		TweakID:     id,
		TweakName:   "Disable Telemetry",
		OptionIndex: 1,
		OptionLabel: "Disabled",
		CreatedAt:   time.Now().UTC(),
		OSVersion:   "w11",
		Registry: []RegistryEntry{
			{
				Hive:         winres.HiveLocalMachine,
				Key:          `SOFTWARE\Policies\Microsoft\Windows\DataCollection`,
				Name:         "AllowTelemetry",
				KeyExisted:   true,
				ValueExisted: true,
				Value:        &v,
			},
		},
		Services: []ServiceEntry{
			{Name: "DiagTrack", StartMode: winres.StartAutomatic, Running: true},
		},
		Tasks: []TaskEntry{
			{Folder: `\Microsoft\Windows\Application Experience`, Name: "ProgramDataUpdater", State: winres.TaskReady},
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "snapshots"))
	want := sampleSnapshot("disable-telemetry")

	require.NoError(t, store.Save(want))

	got, err := store.Load("disable-telemetry")
	require.NoError(t, err)

	assert.Equal(t, want.TweakID, got.TweakID)
	assert.Equal(t, want.OptionIndex, got.OptionIndex)
	assert.Equal(t, want.OptionLabel, got.OptionLabel)
	assert.Equal(t, SchemaVersion, got.SchemaVersion)
	require.Len(t, got.Registry, 1)
	assert.True(t, got.Registry[0].ValueExisted)
	require.NotNil(t, got.Registry[0].Value)
	assert.True(t, got.Registry[0].Value.Equal(winres.DwordValue(1)))
	require.Len(t, got.Services, 1)
	assert.Equal(t, winres.StartAutomatic, got.Services[0].StartMode)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, winres.TaskReady, got.Tasks[0].State)
}

func TestStore_AbsentValueDistinctFromZero(t *testing.T) {
	store := NewStore(t.TempDir())
	snap := sampleSnapshot("t")
	snap.Registry = []RegistryEntry{
		{Hive: winres.HiveCurrentUser, Key: `Software\X`, Name: "Gone", KeyExisted: true, ValueExisted: false},
		{Hive: winres.HiveCurrentUser, Key: `Software\Y`, Name: "NoKey", KeyExisted: false, ValueExisted: false},
	}

	require.NoError(t, store.Save(snap))
	got, err := store.Load("t")
	require.NoError(t, err)

	assert.True(t, got.Registry[0].KeyExisted)
	assert.False(t, got.Registry[0].ValueExisted)
	assert.Nil(t, got.Registry[0].Value)
	assert.False(t, got.Registry[1].KeyExisted)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, tweakerrors.ErrNoSnapshot)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	_, err := store.Load("broken")
	assert.ErrorIs(t, err, tweakerrors.ErrCorruptSnapshot)
}

func TestStore_LoadRejectsEntryMissingValue(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Valid JSON, semantically broken: the entry claims the value existed
	// but carries none. Restoring it would have nothing to write back.
	record := `{
		"schema_version": 1,
		"tweak_id": "broken-entry",
		"option_index": 0,
		"option_label": "Enabled",
		"registry": [
			{"hive": "HKLM", "key": "SOFTWARE\\X", "name": "V",
			 "key_existed": true, "value_existed": true, "value": null}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken-entry.json"), []byte(record), 0644))

	_, err := store.Load("broken-entry")
	assert.ErrorIs(t, err, tweakerrors.ErrCorruptSnapshot)
}

func TestStore_ExistsDelete(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "snapshots"))
	snap := sampleSnapshot("x")

	assert.False(t, store.Exists("x"))
	require.NoError(t, store.Save(snap))
	assert.True(t, store.Exists("x"))

	require.NoError(t, store.Delete("x"))
	assert.False(t, store.Exists("x"))

	// Deleting again is a no-op
	assert.NoError(t, store.Delete("x"))
}

func TestStore_UpdateMetadata(t *testing.T) {
	store := NewStore(t.TempDir())
	snap := sampleSnapshot("switchable")
	require.NoError(t, store.Save(snap))

	require.NoError(t, store.UpdateMetadata("switchable", 0, "Enabled"))

	got, err := store.Load("switchable")
	require.NoError(t, err)
	assert.Equal(t, 0, got.OptionIndex)
	assert.Equal(t, "Enabled", got.OptionLabel)
	// Resource entries must be untouched
	require.Len(t, got.Registry, 1)
	assert.True(t, got.Registry[0].Value.Equal(winres.DwordValue(1)))
}

func TestStore_List(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "snapshots"))

	// Missing directory is an empty store
	ids, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(sampleSnapshot("b-tweak")))
	require.NoError(t, store.Save(sampleSnapshot("a-tweak")))

	ids, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a-tweak", "b-tweak"}, ids)
}

func TestStore_ListSurfacesCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(sampleSnapshot("good")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("oops"), 0644))

	_, err := store.List()
	assert.ErrorIs(t, err, tweakerrors.ErrCorruptSnapshot)
}

func TestSnapshot_Empty(t *testing.T) {
	s := &Snapshot{TweakID: "t"}
	assert.True(t, s.Empty())
	s.Services = []ServiceEntry{{Name: "Spooler"}}
	assert.False(t, s.Empty())
}
