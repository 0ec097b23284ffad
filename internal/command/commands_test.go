package command

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopbyte/seqtrack/internal/music"
	"github.com/loopbyte/seqtrack/internal/types"
)

// writeMinimalWAV writes a canonical 44-byte-header PCM WAV file with
// numFrames frames of silence.
func writeMinimalWAV(t *testing.T, path string, sampleRate, channels, bitsPerSample, numFrames int) {
	t.Helper()
	bytesPerSample := bitsPerSample / 8
	blockAlign := channels * bytesPerSample
	byteRate := sampleRate * blockAlign
	dataSize := numFrames * blockAlign

	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func TestToggleStepRoundTrip(t *testing.T) {
	m := music.NewModel(2)
	j := NewJournal()

	c := &ToggleStepCommand{Model: m, PatternID: 0, Channel: 0, Step: 3}
	j.Execute(c)
	assert.True(t, m.Pattern(0).Steps[0][3])

	res := j.Undo()
	assert.True(t, res.Success)
	assert.False(t, m.Pattern(0).Steps[0][3])

	res = j.Redo()
	assert.True(t, res.Success)
	assert.True(t, m.Pattern(0).Steps[0][3])
}

func TestToggleStepReexecuteReproducesOriginalFlip(t *testing.T) {
	m := music.NewModel(1)
	j := NewJournal()
	c := &ToggleStepCommand{Model: m, PatternID: 0, Channel: 0, Step: 0}
	j.Execute(c) // false -> true
	j.Undo()      // -> false
	// something else flips the cell in between
	m.Pattern(0).Steps[0][0] = true
	res := j.Redo()
	assert.True(t, res.Success)
	// lazy-captured prior (false) means redo always sets !prior == true
	assert.True(t, m.Pattern(0).Steps[0][0])
}

func TestUndoRedoWhenEmpty(t *testing.T) {
	j := NewJournal()
	assert.False(t, j.Undo().Success)
	assert.False(t, j.Redo().Success)
}

// A full unwind of a heterogeneous command sequence restores the prior
// state exactly, and so does a partial undo followed by redo.
func TestUndoRoundTripSequence(t *testing.T) {
	m := music.NewModel(2)
	j := NewJournal()

	cmds := []Command{
		&ToggleStepCommand{Model: m, PatternID: 0, Channel: 0, Step: 0},
		&ToggleStepCommand{Model: m, PatternID: 0, Channel: 0, Step: 2},
		&AddNoteCommand{Model: m, PatternID: 0, Channel: 0, Pitch: 60, Start: 4, Dur: 1},
		&CycleMuteStateCommand{Model: m, Channel: 1},
	}
	snapshotBefore := snapshotPattern(m, 0)

	for _, c := range cmds {
		j.Execute(c)
	}
	for range cmds {
		assert.True(t, j.Undo().Success)
	}
	assert.Equal(t, snapshotBefore, snapshotPattern(m, 0))

	for _, c := range cmds {
		j.Execute(c)
	}
	after := snapshotPattern(m, 0)
	for i := 0; i < 2; i++ {
		j.Undo()
	}
	for i := 0; i < 2; i++ {
		j.Redo()
	}
	assert.Equal(t, after, snapshotPattern(m, 0))
}

func snapshotPattern(m *music.Model, id int) [16]bool {
	return m.Pattern(id).Steps[0]
}

func TestBatchUndoesChildrenInReverse(t *testing.T) {
	m := music.NewModel(1)
	j := NewJournal()

	j.Batch("clear row", func() {
		j.Execute(&ToggleStepCommand{Model: m, PatternID: 0, Channel: 0, Step: 0})
		j.Execute(&ToggleStepCommand{Model: m, PatternID: 0, Channel: 0, Step: 1})
	})
	assert.True(t, m.Pattern(0).Steps[0][0])
	assert.True(t, m.Pattern(0).Steps[0][1])

	assert.True(t, j.Undo().Success)
	assert.False(t, m.Pattern(0).Steps[0][0])
	assert.False(t, m.Pattern(0).Steps[0][1])
}

// At most one channel can be solo at a time, even after cycling several
// channels through mute/solo in sequence.
func TestSoloSingleton(t *testing.T) {
	m := music.NewModel(3)
	j := NewJournal()

	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 0}) // -> muted
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 0}) // -> solo
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 1}) // -> muted
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 1}) // -> solo, clears ch0

	soloCount := 0
	for _, ch := range m.Channels {
		if ch.Solo {
			soloCount++
		}
	}
	assert.LessOrEqual(t, soloCount, 1)
	assert.False(t, m.Channels[0].Solo)
	assert.True(t, m.Channels[1].Solo)
}

func TestCycleMuteAcrossTwoChannelsKeepsSingleton(t *testing.T) {
	m := music.NewModel(2)
	j := NewJournal()

	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 0})
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 0})
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 1})
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 1})

	assert.Equal(t, true, m.Channels[0].Muted)
	assert.Equal(t, false, m.Channels[0].Solo)
	assert.Equal(t, false, m.Channels[1].Muted)
	assert.Equal(t, true, m.Channels[1].Solo)
}

func TestCycleMuteUndoRestoresPriorSoloChannel(t *testing.T) {
	m := music.NewModel(2)
	j := NewJournal()

	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 0})
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 0}) // ch0 solo
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 1})
	j.Execute(&CycleMuteStateCommand{Model: m, Channel: 1}) // ch1 solo, clears ch0

	j.Undo() // second ch1 cycle undone -> ch1 muted, ch0 restored solo
	assert.True(t, m.Channels[0].Solo)
	assert.False(t, m.Channels[1].Solo)
}

func TestToggleNoteAddsThenRemoves(t *testing.T) {
	m := music.NewModel(1)
	j := NewJournal()

	c := &ToggleNoteCommand{Model: m, PatternID: 0, Channel: 0, Pitch: 60, Start: 4, Dur: 1}
	j.Execute(c)
	assert.Equal(t, 1, len(m.Pattern(0).Notes[0]))

	c2 := &ToggleNoteCommand{Model: m, PatternID: 0, Channel: 0, Pitch: 60, Start: 4, Dur: 1}
	j.Execute(c2)
	assert.Equal(t, 0, len(m.Pattern(0).Notes[0]))

	j.Undo()
	assert.Equal(t, 1, len(m.Pattern(0).Notes[0]))
}

// Clearing channel 0's steps and then pasting that deleted row onto
// channel 1 are two independent undo entries: each undo call reverts
// exactly one.
func TestDeleteRowThenPasteOntoAnotherRow(t *testing.T) {
	m := music.NewModel(2)
	j := NewJournal()
	m.Pattern(1).Steps[0] = [16]bool{true, false, true}
	m.Pattern(1).Steps[1] = [16]bool{false, false, false, true}
	originalRow1 := m.Pattern(1).Steps[1]

	deleted := m.Pattern(1).Steps[0]
	j.Execute(&ClearChannelCommand{Model: m, PatternID: 1, Channel: 0})
	j.Execute(&SetStepsCommand{Model: m, PatternID: 1, Channel: 1, Start: 0, Bools: boolSlice(deleted[:])})

	assert.Equal(t, [16]bool{}, m.Pattern(1).Steps[0])
	assert.Equal(t, deleted, m.Pattern(1).Steps[1])

	j.Undo() // undoes the paste onto channel 1
	assert.Equal(t, originalRow1, m.Pattern(1).Steps[1])
	j.Undo() // undoes the delete of channel 0
	assert.Equal(t, deleted, m.Pattern(1).Steps[0])
}

func boolSlice(b []bool) []bool {
	out := make([]bool, len(b))
	copy(out, b)
	return out
}

func TestSetChannelSampleCachesMetadataAndIsUndoable(t *testing.T) {
	m := music.NewModel(1)
	j := NewJournal()
	root := t.TempDir()
	writeMinimalWAV(t, filepath.Join(root, "kick.wav"), 44100, 1, 16, 22050)

	j.Execute(&SetChannelSampleCommand{Model: m, Channel: 0, Path: "kick.wav", SampleRoot: root})
	assert.Equal(t, "kick.wav", m.Channels[0].SampleRef)
	assert.Equal(t, "kick", m.Channels[0].Name)
	assert.InDelta(t, 0.5, m.Channels[0].Metadata.Duration.Seconds(), 0.01)
	assert.Equal(t, 44100, m.Channels[0].Metadata.SampleRate)

	j.Undo()
	assert.Equal(t, "", m.Channels[0].SampleRef)
	assert.Equal(t, types.SampleMetadata{}, m.Channels[0].Metadata)
}

func TestSetChannelSampleNonFatalOnMissingFile(t *testing.T) {
	m := music.NewModel(1)
	j := NewJournal()

	j.Execute(&SetChannelSampleCommand{Model: m, Channel: 0, Path: "missing.wav", SampleRoot: t.TempDir()})
	assert.Equal(t, "missing.wav", m.Channels[0].SampleRef)
	assert.Equal(t, types.SampleMetadata{}, m.Channels[0].Metadata)
}
