package music

import (
	"testing"

	"github.com/loopbyte/seqtrack/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestSwitchingToNewPatternCreatesEmpty(t *testing.T) {
	m := NewModel(4)
	m.SwitchPattern(7)
	p := m.CurrentPattern()
	assert.Equal(t, 7, p.ID)
	assert.True(t, p.IsEmpty())
}

func TestNonEmptyPatterns(t *testing.T) {
	m := NewModel(2)
	m.Pattern(0).Steps[0][0] = true
	m.Pattern(1) // stays empty
	m.Pattern(2).Notes[0][1] = types.Note{ID: 1, Pitch: 60, StartStep: 0, Duration: 1}

	nonEmpty := m.NonEmptyPatterns()
	ids := map[int]bool{}
	for _, p := range nonEmpty {
		ids[p.ID] = true
	}
	assert.True(t, ids[0])
	assert.False(t, ids[1])
	assert.True(t, ids[2])
}

func TestEffectivelyMuted(t *testing.T) {
	m := NewModel(3)
	assert.False(t, m.EffectivelyMuted(0))

	m.Channels[1].Solo = true
	assert.True(t, m.EffectivelyMuted(0))
	assert.False(t, m.EffectivelyMuted(1))

	m.Channels[1].Solo = false
	m.Channels[2].Muted = true
	assert.True(t, m.EffectivelyMuted(2))
	assert.False(t, m.EffectivelyMuted(0))
}

func TestSoloChannel(t *testing.T) {
	m := NewModel(2)
	assert.Equal(t, -1, m.SoloChannel())
	m.Channels[1].Solo = true
	assert.Equal(t, 1, m.SoloChannel())
}
