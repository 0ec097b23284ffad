package command

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/loopbyte/seqtrack/internal/music"
	"github.com/loopbyte/seqtrack/internal/sampleinfo"
	"github.com/loopbyte/seqtrack/internal/types"
)

// ToggleStepCommand flips one step. The pre-toggle value is captured on
// first Execute only, so a later redo always reproduces the same flip
// regardless of what else touched the cell in between.
type ToggleStepCommand struct {
	Model              *music.Model
	PatternID, Channel int
	Step               int

	captured bool
	prior    bool
}

func (c *ToggleStepCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	if !c.captured {
		c.prior = p.Steps[c.Channel][c.Step]
		c.captured = true
	}
	p.Steps[c.Channel][c.Step] = !c.prior
}

func (c *ToggleStepCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	p.Steps[c.Channel][c.Step] = c.prior
}

func (c *ToggleStepCommand) Description() string {
	return fmt.Sprintf("toggle step %d ch=%d pattern=%d", c.Step, c.Channel, c.PatternID)
}

// SetStepsCommand writes a slice of bools starting at Start, clipped so
// it never writes past step 15.
type SetStepsCommand struct {
	Model              *music.Model
	PatternID, Channel int
	Start              int
	Bools              []bool

	captured bool
	prior    [types.NumSteps]bool
}

func (c *SetStepsCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	if !c.captured {
		c.prior = p.Steps[c.Channel]
		c.captured = true
	}
	n := len(c.Bools)
	if c.Start+n > types.NumSteps {
		n = types.NumSteps - c.Start
	}
	for i := 0; i < n; i++ {
		p.Steps[c.Channel][c.Start+i] = c.Bools[i]
	}
}

func (c *SetStepsCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	p.Steps[c.Channel] = c.prior
}

func (c *SetStepsCommand) Description() string {
	return fmt.Sprintf("set steps ch=%d pattern=%d", c.Channel, c.PatternID)
}

// ClearStepRangeCommand sets steps [S0,S1] (inclusive, clipped) to false.
type ClearStepRangeCommand struct {
	Model              *music.Model
	PatternID, Channel int
	S0, S1             int

	captured bool
	prior    [types.NumSteps]bool
}

func (c *ClearStepRangeCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	if !c.captured {
		c.prior = p.Steps[c.Channel]
		c.captured = true
	}
	s0, s1 := c.S0, c.S1
	if s0 < 0 {
		s0 = 0
	}
	if s1 > types.NumSteps-1 {
		s1 = types.NumSteps - 1
	}
	for i := s0; i <= s1; i++ {
		p.Steps[c.Channel][i] = false
	}
}

func (c *ClearStepRangeCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	p.Steps[c.Channel] = c.prior
}

func (c *ClearStepRangeCommand) Description() string {
	return fmt.Sprintf("clear steps [%d,%d] ch=%d pattern=%d", c.S0, c.S1, c.Channel, c.PatternID)
}

// ClearChannelCommand clears an entire channel row in one pattern.
type ClearChannelCommand struct {
	Model              *music.Model
	PatternID, Channel int

	captured bool
	prior    [types.NumSteps]bool
}

func (c *ClearChannelCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	if !c.captured {
		c.prior = p.Steps[c.Channel]
		c.captured = true
	}
	p.Steps[c.Channel] = [types.NumSteps]bool{}
}

func (c *ClearChannelCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	p.Steps[c.Channel] = c.prior
}

func (c *ClearChannelCommand) Description() string {
	return fmt.Sprintf("clear channel %d pattern=%d", c.Channel, c.PatternID)
}

// ToggleMuteCommand flips only the muted flag, independent of solo.
type ToggleMuteCommand struct {
	Model   *music.Model
	Channel int

	captured bool
	prior    bool
}

func (c *ToggleMuteCommand) Execute() {
	ch := &c.Model.Channels[c.Channel]
	if !c.captured {
		c.prior = ch.Muted
		c.captured = true
	}
	ch.Muted = !c.prior
}

func (c *ToggleMuteCommand) Undo() {
	c.Model.Channels[c.Channel].Muted = c.prior
}

func (c *ToggleMuteCommand) Description() string {
	return fmt.Sprintf("toggle mute ch=%d", c.Channel)
}

// CycleMuteStateCommand cycles a channel clean -> muted -> solo -> clean.
// Taking solo clears any other channel's solo flag; the previously
// soloed channel (if any) is restored on undo, preserving the
// solo-singleton invariant through undo/redo.
type CycleMuteStateCommand struct {
	Model   *music.Model
	Channel int

	captured         bool
	priorMuted       bool
	priorSolo        bool
	priorSoloChannel int
}

func (c *CycleMuteStateCommand) Execute() {
	ch := &c.Model.Channels[c.Channel]
	if !c.captured {
		c.priorMuted = ch.Muted
		c.priorSolo = ch.Solo
		c.priorSoloChannel = -1
		for i := range c.Model.Channels {
			if i != c.Channel && c.Model.Channels[i].Solo {
				c.priorSoloChannel = i
				break
			}
		}
		c.captured = true
	}

	switch {
	case !c.priorMuted && !c.priorSolo:
		ch.Muted, ch.Solo = true, false
	case c.priorMuted && !c.priorSolo:
		ch.Muted, ch.Solo = false, true
		for i := range c.Model.Channels {
			if i != c.Channel {
				c.Model.Channels[i].Solo = false
			}
		}
	default:
		ch.Muted, ch.Solo = false, false
	}
}

func (c *CycleMuteStateCommand) Undo() {
	ch := &c.Model.Channels[c.Channel]
	ch.Muted = c.priorMuted
	ch.Solo = c.priorSolo
	if c.priorSoloChannel >= 0 {
		c.Model.Channels[c.priorSoloChannel].Solo = true
	}
}

func (c *CycleMuteStateCommand) Description() string {
	return fmt.Sprintf("cycle mute ch=%d", c.Channel)
}

// SetChannelSampleCommand assigns a sample path to a channel, deriving
// the channel's display name from the path's basename with its
// extension stripped. It also inspects the file's WAV header and caches
// the result on the channel's Metadata; a failed inspection (missing
// file, non-WAV, truncated header) is logged and leaves Metadata
// cleared rather than failing the assignment, since the audio
// collaborator is the one that actually has to decode the file.
type SetChannelSampleCommand struct {
	Model      *music.Model
	Channel    int
	Path       string
	SampleRoot string

	captured       bool
	priorSampleRef string
	priorName      string
	priorMetadata  types.SampleMetadata
}

func (c *SetChannelSampleCommand) Execute() {
	ch := &c.Model.Channels[c.Channel]
	if !c.captured {
		c.priorSampleRef = ch.SampleRef
		c.priorName = ch.Name
		c.priorMetadata = ch.Metadata
		c.captured = true
	}
	ch.SampleRef = c.Path
	base := filepath.Base(c.Path)
	ch.Name = strings.TrimSuffix(base, filepath.Ext(base))

	meta, err := sampleinfo.Inspect(filepath.Join(c.SampleRoot, c.Path))
	if err != nil {
		log.Printf("sample metadata: %v", err)
		ch.Metadata = types.SampleMetadata{}
		return
	}
	ch.Metadata = types.SampleMetadata{Duration: meta.Duration, SampleRate: meta.SampleRate, Channels: meta.Channels}
}

func (c *SetChannelSampleCommand) Undo() {
	ch := &c.Model.Channels[c.Channel]
	ch.SampleRef = c.priorSampleRef
	ch.Name = c.priorName
	ch.Metadata = c.priorMetadata
}

func (c *SetChannelSampleCommand) Description() string {
	return fmt.Sprintf("set sample ch=%d path=%s", c.Channel, c.Path)
}

// AddNoteCommand adds a note. Its id is minted on first Execute and never
// re-minted on redo, so later commands referring to the id stay valid.
type AddNoteCommand struct {
	Model              *music.Model
	PatternID, Channel int
	Pitch, Start, Dur  int

	captured bool
	id       int
}

func (c *AddNoteCommand) Execute() {
	if !c.captured {
		c.id = c.Model.NextNoteID()
		c.captured = true
	}
	p := c.Model.Pattern(c.PatternID)
	p.Notes[c.Channel][c.id] = types.Note{ID: c.id, Pitch: c.Pitch, StartStep: c.Start, Duration: c.Dur}
}

func (c *AddNoteCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	delete(p.Notes[c.Channel], c.id)
}

func (c *AddNoteCommand) Description() string {
	return fmt.Sprintf("add note ch=%d pitch=%d start=%d", c.Channel, c.Pitch, c.Start)
}

func (c *AddNoteCommand) NoteID() int { return c.id }

// RemoveNoteCommand removes a note by id.
type RemoveNoteCommand struct {
	Model              *music.Model
	PatternID, Channel int
	NoteID             int

	captured bool
	removed  types.Note
}

func (c *RemoveNoteCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	if !c.captured {
		c.removed = p.Notes[c.Channel][c.NoteID]
		c.captured = true
	}
	delete(p.Notes[c.Channel], c.NoteID)
}

func (c *RemoveNoteCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	p.Notes[c.Channel][c.NoteID] = c.removed
}

func (c *RemoveNoteCommand) Description() string {
	return fmt.Sprintf("remove note id=%d ch=%d", c.NoteID, c.Channel)
}

// NotePatch is the field-wise partial UpdateNoteCommand applies; a nil
// field is left untouched.
type NotePatch struct {
	Pitch    *int
	Start    *int
	Duration *int
}

// UpdateNoteCommand field-wise merges Patch into an existing note. It
// captures the note's prior pitch, start and duration on first Execute;
// Undo restores only the fields the patch actually touches.
type UpdateNoteCommand struct {
	Model              *music.Model
	PatternID, Channel int
	NoteID             int
	Patch              NotePatch

	captured     bool
	priorPitch   int
	priorStart   int
	priorDur     int
}

func (c *UpdateNoteCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	note := p.Notes[c.Channel][c.NoteID]
	if !c.captured {
		c.priorPitch, c.priorStart, c.priorDur = note.Pitch, note.StartStep, note.Duration
		c.captured = true
	}
	if c.Patch.Pitch != nil {
		note.Pitch = *c.Patch.Pitch
	}
	if c.Patch.Start != nil {
		note.StartStep = *c.Patch.Start
	}
	if c.Patch.Duration != nil {
		note.Duration = *c.Patch.Duration
	}
	p.Notes[c.Channel][c.NoteID] = note
}

func (c *UpdateNoteCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	note := p.Notes[c.Channel][c.NoteID]
	if c.Patch.Pitch != nil {
		note.Pitch = c.priorPitch
	}
	if c.Patch.Start != nil {
		note.StartStep = c.priorStart
	}
	if c.Patch.Duration != nil {
		note.Duration = c.priorDur
	}
	p.Notes[c.Channel][c.NoteID] = note
}

func (c *UpdateNoteCommand) Description() string {
	return fmt.Sprintf("update note id=%d ch=%d", c.NoteID, c.Channel)
}

// ToggleNoteCommand adds a note at (pitch,start) if none exists there,
// else removes whichever one does. Whichever side fires is what Undo
// reverses.
type ToggleNoteCommand struct {
	Model              *music.Model
	PatternID, Channel int
	Pitch, Start, Dur  int

	captured bool
	added    bool
	noteID   int
	removed  types.Note
}

func (c *ToggleNoteCommand) findExisting(p *types.Pattern) (types.Note, bool) {
	for _, n := range p.Notes[c.Channel] {
		if n.Pitch == c.Pitch && n.StartStep == c.Start {
			return n, true
		}
	}
	return types.Note{}, false
}

func (c *ToggleNoteCommand) Execute() {
	p := c.Model.Pattern(c.PatternID)
	if !c.captured {
		if existing, ok := c.findExisting(p); ok {
			c.added = false
			c.removed = existing
		} else {
			c.added = true
			c.noteID = c.Model.NextNoteID()
		}
		c.captured = true
	}
	if c.added {
		p.Notes[c.Channel][c.noteID] = types.Note{ID: c.noteID, Pitch: c.Pitch, StartStep: c.Start, Duration: c.Dur}
	} else {
		delete(p.Notes[c.Channel], c.removed.ID)
	}
}

func (c *ToggleNoteCommand) Undo() {
	p := c.Model.Pattern(c.PatternID)
	if c.added {
		delete(p.Notes[c.Channel], c.noteID)
	} else {
		p.Notes[c.Channel][c.removed.ID] = c.removed
	}
}

func (c *ToggleNoteCommand) Description() string {
	return fmt.Sprintf("toggle note ch=%d pitch=%d start=%d", c.Channel, c.Pitch, c.Start)
}

// TogglePlacementCommand adds a placement at (PatternID,StartBar) with
// Length if none exists there yet, else removes whichever one does, per
// the "at most one placement per (pattern_id, start_bar)" invariant.
type TogglePlacementCommand struct {
	Model                       *music.Model
	PatternID, StartBar, Length int

	captured bool
	added    bool
	id       int
	removed  types.PatternPlacement
}

func (c *TogglePlacementCommand) findExisting() (types.PatternPlacement, bool) {
	for _, pl := range c.Model.Arrangement.Placements {
		if pl.PatternID == c.PatternID && pl.StartBar == c.StartBar {
			return pl, true
		}
	}
	return types.PatternPlacement{}, false
}

func (c *TogglePlacementCommand) removeByID(id int) {
	placements := c.Model.Arrangement.Placements
	for i, pl := range placements {
		if pl.ID == id {
			c.Model.Arrangement.Placements = append(placements[:i], placements[i+1:]...)
			return
		}
	}
}

func (c *TogglePlacementCommand) Execute() {
	if !c.captured {
		if existing, ok := c.findExisting(); ok {
			c.added = false
			c.removed = existing
		} else {
			c.added = true
			c.id = c.Model.NextPlacementID()
		}
		c.captured = true
	}
	if c.added {
		c.Model.Arrangement.Placements = append(c.Model.Arrangement.Placements,
			types.PatternPlacement{ID: c.id, PatternID: c.PatternID, StartBar: c.StartBar, Length: c.Length})
	} else {
		c.removeByID(c.removed.ID)
	}
}

func (c *TogglePlacementCommand) Undo() {
	if c.added {
		c.removeByID(c.id)
	} else {
		c.Model.Arrangement.Placements = append(c.Model.Arrangement.Placements, c.removed)
	}
}

func (c *TogglePlacementCommand) Description() string {
	return fmt.Sprintf("toggle placement pattern=%d bar=%d", c.PatternID, c.StartBar)
}

// ToggleMutedPatternCommand flips whether a pattern id is in the
// arrangement's muted set, independent of any channel's mute/solo.
type ToggleMutedPatternCommand struct {
	Model     *music.Model
	PatternID int

	captured bool
	prior    bool
}

func (c *ToggleMutedPatternCommand) Execute() {
	if !c.captured {
		c.prior = c.Model.Arrangement.MutedPatterns[c.PatternID]
		c.captured = true
	}
	c.setMuted(!c.prior)
}

func (c *ToggleMutedPatternCommand) Undo() {
	c.setMuted(c.prior)
}

func (c *ToggleMutedPatternCommand) setMuted(muted bool) {
	if muted {
		c.Model.Arrangement.MutedPatterns[c.PatternID] = true
	} else {
		delete(c.Model.Arrangement.MutedPatterns, c.PatternID)
	}
}

func (c *ToggleMutedPatternCommand) Description() string {
	return fmt.Sprintf("toggle muted pattern=%d", c.PatternID)
}
