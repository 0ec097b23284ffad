// Package project serializes a music.Model to a versioned value tree and
// back, using json-iterator to keep encode/decode fast on larger
// projects.
package project

import (
	"fmt"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/loopbyte/seqtrack/internal/music"
	"github.com/loopbyte/seqtrack/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CurrentVersion is the value tree schema this package writes. Loading a
// tree with a different version is a fatal error.
const CurrentVersion = 1

// ValueTree is the on-disk shape of a project.
type ValueTree struct {
	Version          int                   `json:"version"`
	Name             string                `json:"name"`
	CreatedAt        time.Time             `json:"created_at"`
	ModifiedAt       time.Time             `json:"modified_at"`
	BPM              float64               `json:"bpm"`
	CurrentPatternID int                   `json:"current_pattern_id"`
	Channels         []types.Channel       `json:"channels"`
	Patterns         []PatternTree         `json:"patterns"`
	Arrangement      ArrangementTree       `json:"arrangement"`
}

// PatternTree flattens Pattern.Notes (a map per channel) into an ordered
// slice so the JSON shape doesn't depend on Go map iteration order.
type PatternTree struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Steps [][16]bool     `json:"steps"`
	Notes [][]types.Note `json:"notes"`
}

// ArrangementTree mirrors types.Arrangement but persists MutedPatterns
// as a sorted array even though the in-memory form is a set.
type ArrangementTree struct {
	Placements    []types.PatternPlacement `json:"placements"`
	MutedPatterns []int                    `json:"muted_patterns"`
}

// ErrUnsupportedVersion is returned by Decode when the tree's version
// does not match CurrentVersion. Treated as a fatal load error by callers.
type ErrUnsupportedVersion struct {
	Got int
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported project version %d (want %d)", e.Got, CurrentVersion)
}

// Meta carries the project-level fields that don't live on music.Model.
type Meta struct {
	Name       string
	CreatedAt  time.Time
	ModifiedAt time.Time
	BPM        float64
}

// Encode converts a model plus its metadata into the wire format.
func Encode(m *music.Model, meta Meta) ([]byte, error) {
	tree := ValueTree{
		Version:          CurrentVersion,
		Name:             meta.Name,
		CreatedAt:        meta.CreatedAt,
		ModifiedAt:       meta.ModifiedAt,
		BPM:              meta.BPM,
		CurrentPatternID: m.CurrentPatternID,
		Channels:         m.Channels,
		Arrangement: ArrangementTree{
			Placements:    m.Arrangement.Placements,
			MutedPatterns: sortedKeys(m.Arrangement.MutedPatterns),
		},
	}

	ids := make([]int, 0, len(m.Patterns))
	for id := range m.Patterns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := m.Patterns[id]
		pt := PatternTree{ID: p.ID, Name: p.Name, Steps: toFixedSteps(p.Steps), Notes: make([][]types.Note, len(p.Notes))}
		for ch, notes := range p.Notes {
			noteIDs := make([]int, 0, len(notes))
			for id := range notes {
				noteIDs = append(noteIDs, id)
			}
			sort.Ints(noteIDs)
			list := make([]types.Note, 0, len(notes))
			for _, id := range noteIDs {
				list = append(list, notes[id])
			}
			pt.Notes[ch] = list
		}
		tree.Patterns = append(tree.Patterns, pt)
	}

	return json.Marshal(tree)
}

// Decode parses the wire format back into a model and its metadata.
func Decode(data []byte) (*music.Model, Meta, error) {
	var tree ValueTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, Meta{}, fmt.Errorf("decode project: %w", err)
	}
	if tree.Version != CurrentVersion {
		return nil, Meta{}, &ErrUnsupportedVersion{Got: tree.Version}
	}

	m := music.NewModel(len(tree.Channels))
	copy(m.Channels, tree.Channels)
	m.CurrentPatternID = tree.CurrentPatternID
	m.Arrangement.Placements = tree.Arrangement.Placements
	m.Arrangement.MutedPatterns = make(map[int]bool, len(tree.Arrangement.MutedPatterns))
	for _, id := range tree.Arrangement.MutedPatterns {
		m.Arrangement.MutedPatterns[id] = true
	}

	maxNoteID, maxPlacementID := 0, 0
	for _, pt := range tree.Patterns {
		p := m.Pattern(pt.ID)
		p.Name = pt.Name
		for ch, row := range pt.Steps {
			if ch < len(p.Steps) {
				p.Steps[ch] = row
			}
		}
		for ch, notes := range pt.Notes {
			if ch >= len(p.Notes) {
				continue
			}
			for _, n := range notes {
				p.Notes[ch][n.ID] = n
				if n.ID > maxNoteID {
					maxNoteID = n.ID
				}
			}
		}
	}
	for _, pl := range tree.Arrangement.Placements {
		if pl.ID > maxPlacementID {
			maxPlacementID = pl.ID
		}
	}
	m.FastForwardIDs(maxNoteID, maxPlacementID)

	meta := Meta{Name: tree.Name, CreatedAt: tree.CreatedAt, ModifiedAt: tree.ModifiedAt, BPM: tree.BPM}
	return m, meta, nil
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func toFixedSteps(steps [][16]bool) [][16]bool {
	out := make([][16]bool, len(steps))
	copy(out, steps)
	return out
}
