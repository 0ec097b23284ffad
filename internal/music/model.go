// Package music holds the pattern-centric musical model: channels,
// patterns (steps + notes), arrangement placements, and the mute/solo and
// non-empty-pattern views derived from them.
package music

import "github.com/loopbyte/seqtrack/internal/types"

// Model is the single in-memory value graph the command journal mutates
// and the playback scheduler reads.
type Model struct {
	Channels         []types.Channel
	Patterns         map[int]*types.Pattern
	CurrentPatternID int
	Arrangement      *types.Arrangement

	nextNoteID      int
	nextPlacementID int
}

// NewModel builds a model with numChannels empty channel slots and a
// single empty pattern 0, matching the "created at project load, from a
// default template" lifecycle rule.
func NewModel(numChannels int) *Model {
	m := &Model{
		Channels:    make([]types.Channel, numChannels),
		Patterns:    make(map[int]*types.Pattern),
		Arrangement: types.NewArrangement(),
	}
	for i := range m.Channels {
		m.Channels[i] = types.Channel{Kind: types.ChannelSample}
	}
	m.Pattern(0)
	return m
}

// Pattern returns the pattern with id, creating an empty one if it does
// not yet exist, per the "switching to a not-yet-existent id creates an
// empty pattern" invariant.
func (m *Model) Pattern(id int) *types.Pattern {
	p, ok := m.Patterns[id]
	if !ok {
		p = types.NewPattern(id, "", len(m.Channels))
		m.Patterns[id] = p
	}
	return p
}

// CurrentPattern returns (creating if necessary) the pattern named by
// CurrentPatternID.
func (m *Model) CurrentPattern() *types.Pattern {
	return m.Pattern(m.CurrentPatternID)
}

// SwitchPattern changes the current pattern, creating it if it does not
// exist yet.
func (m *Model) SwitchPattern(id int) {
	m.CurrentPatternID = id
	m.Pattern(id)
}

func (m *Model) NextNoteID() int {
	m.nextNoteID++
	return m.nextNoteID
}

func (m *Model) NextPlacementID() int {
	m.nextPlacementID++
	return m.nextPlacementID
}

// FastForwardIDs raises the note/placement id counters so the next
// NextNoteID/NextPlacementID call never mints an id at or below either
// floor. A deserializer calls this once after populating patterns and
// placements directly by id, so a command issued afterward can't mint a
// colliding id.
func (m *Model) FastForwardIDs(noteFloor, placementFloor int) {
	if noteFloor > m.nextNoteID {
		m.nextNoteID = noteFloor
	}
	if placementFloor > m.nextPlacementID {
		m.nextPlacementID = placementFloor
	}
}

// NonEmptyPatterns returns exactly the patterns with at least one true
// step or any note.
func (m *Model) NonEmptyPatterns() []*types.Pattern {
	var out []*types.Pattern
	for _, p := range m.Patterns {
		if !p.IsEmpty() {
			out = append(out, p)
		}
	}
	return out
}

// EffectivelyMuted reports whether channel i is muted, or some other
// channel is soloed while i is not.
func (m *Model) EffectivelyMuted(i int) bool {
	ch := m.Channels[i]
	if ch.Muted {
		return true
	}
	for j, other := range m.Channels {
		if j != i && other.Solo {
			return true
		}
	}
	return false
}

// SoloChannel returns the index of the soloed channel, or -1 if none.
func (m *Model) SoloChannel() int {
	for i, ch := range m.Channels {
		if ch.Solo {
			return i
		}
	}
	return -1
}

// ChannelView combines a channel's metadata with the current pattern's
// steps and notes for display.
type ChannelView struct {
	Meta  types.Channel
	Steps [types.NumSteps]bool
	Notes map[int]types.Note
}

func (m *Model) ChannelsWithSteps() []ChannelView {
	p := m.CurrentPattern()
	views := make([]ChannelView, len(m.Channels))
	for i, ch := range m.Channels {
		views[i] = ChannelView{Meta: ch, Steps: p.Steps[i], Notes: p.Notes[i]}
	}
	return views
}
