package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopbyte/seqtrack/internal/music"
	"github.com/loopbyte/seqtrack/internal/project"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	m := music.NewModel(1)
	m.Channels[0].SampleRef = "snare.wav"
	m.Pattern(0).Steps[0][1] = true
	meta := project.Meta{Name: "roundtrip", BPM: 128}

	require.NoError(t, store.Save(m, meta))

	loaded, loadedMeta, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loadedMeta.Name)
	assert.Equal(t, "snare.wav", loaded.Channels[0].SampleRef)
	assert.True(t, loaded.Pattern(0).Steps[0][1])
}

func TestLoadMissingFileErrors(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, _, err := store.Load()
	assert.Error(t, err)
}

func TestAutosaverCoalescesBurstsIntoOneSave(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	a := NewAutosaver(store)

	saveCount := 0
	m := music.NewModel(1)
	snapshot := func() (*music.Model, project.Meta) {
		saveCount++
		return m, project.Meta{Name: "burst"}
	}

	for i := 0; i < 5; i++ {
		a.Notify(snapshot)
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(AutosaveWindow + 100*time.Millisecond)

	assert.Equal(t, 1, saveCount)
	_, meta, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "burst", meta.Name)
}

func TestAutosaverWithWindowUsesCallerSuppliedDuration(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	a := NewAutosaverWithWindow(store, 20*time.Millisecond)

	m := music.NewModel(1)
	a.Notify(func() (*music.Model, project.Meta) {
		return m, project.Meta{Name: "short-window"}
	})

	time.Sleep(80 * time.Millisecond)
	_, meta, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "short-window", meta.Name)
}

func TestAutosaverFlushSavesPendingImmediately(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	a := NewAutosaver(store)

	m := music.NewModel(1)
	a.Notify(func() (*music.Model, project.Meta) {
		return m, project.Meta{Name: "flushed"}
	})
	a.Flush()

	_, meta, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "flushed", meta.Name)
}
