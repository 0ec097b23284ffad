// Package app is the composition root: an arena of owned components
// (model, journal, registers, jumplist, scheduler, persistence) held by
// one App value, with components referencing each other by direct
// pointer into the arena rather than by closures over free-floating
// globals.
package app

import (
	"path/filepath"
	"time"

	"github.com/loopbyte/seqtrack/internal/audio"
	"github.com/loopbyte/seqtrack/internal/command"
	"github.com/loopbyte/seqtrack/internal/jumplist"
	"github.com/loopbyte/seqtrack/internal/modalinput"
	"github.com/loopbyte/seqtrack/internal/motion"
	"github.com/loopbyte/seqtrack/internal/music"
	"github.com/loopbyte/seqtrack/internal/persistence"
	"github.com/loopbyte/seqtrack/internal/playback"
	"github.com/loopbyte/seqtrack/internal/project"
	"github.com/loopbyte/seqtrack/internal/register"
	"github.com/loopbyte/seqtrack/internal/sampleinfo"
	"github.com/loopbyte/seqtrack/internal/types"
	"github.com/loopbyte/seqtrack/internal/vimstate"
)

// Focus names which grid the program's keypresses are currently routed
// to; CycleFocus rotates through all three in the order they're listed
// here.
type Focus int

const (
	FocusSteps Focus = iota
	FocusPianoRoll
	FocusArrangement
)

// pianoRollRows is the MIDI pitch range the piano-roll grid's rows span.
const pianoRollRows = 128

// arrangementRows is the number of pattern-id slots the arrangement grid
// exposes as rows; a project with more patterns than this can still
// reference the extra ones by switching CurrentPatternID, just not place
// them on the arrangement timeline through this grid.
const arrangementRows = 16

// App owns every shared singleton: registers and jumplist are
// constructed here, not as file-scope statics, and threaded through one
// Controller per editable grid (steps, piano roll, arrangement), all
// sharing the same Registers/Jumplist so yank/paste and jump history
// cross grids.
type App struct {
	Model     *music.Model
	Journal   *command.Journal
	Registers *register.Store
	Jumplist  *jumplist.List
	Scheduler *playback.Scheduler
	Store     *persistence.FileStore
	Autosave  *persistence.Autosaver

	Meta       project.Meta
	SampleRoot string

	Focus           Focus
	SelectedChannel int

	StepGrid              *motion.Grid
	Controller            *modalinput.Controller
	PianoRollGrid         *motion.Grid
	PianoRollController   *modalinput.Controller
	ArrangementGrid       *motion.Grid
	ArrangementController *modalinput.Controller
}

// New builds an App with numChannels channel slots, wired to audio for
// playback/preview and rooted at dir for persistence.
func New(numChannels int, sink audio.Sink, dir string) *App {
	m := music.NewModel(numChannels)
	now := time.Now()
	a := &App{
		Model:     m,
		Journal:   command.NewJournal(),
		Registers: register.New(),
		Jumplist:  jumplist.New(),
		Scheduler: playback.New(m, sink),
		Store:     persistence.NewFileStore(dir),
		Meta:      project.Meta{Name: "untitled", CreatedAt: now, ModifiedAt: now, BPM: 120},
	}
	a.Autosave = persistence.NewAutosaver(a.Store)
	a.buildGrids(numChannels)
	return a
}

func (a *App) buildGrids(numChannels int) {
	a.StepGrid = &motion.Grid{
		Rows: numChannels,
		Cols: types.NumSteps,
		Zones: []types.Zone{
			{Name: "steps", C0: 0, C1: types.NumSteps - 1, IsMain: true, WordInterval: 4},
		},
	}
	a.Controller = modalinput.New(a.StepGrid, a.Registers, a.Jumplist, &stepGridOps{app: a})

	a.PianoRollGrid = &motion.Grid{
		Rows: pianoRollRows,
		Cols: types.NumSteps,
		Zones: []types.Zone{
			{Name: "notes", C0: 0, C1: types.NumSteps - 1, IsMain: true, WordInterval: 4},
		},
	}
	a.PianoRollController = modalinput.New(a.PianoRollGrid, a.Registers, a.Jumplist, &pianoRollOps{app: a})

	a.ArrangementGrid = &motion.Grid{
		Rows: arrangementRows,
		Cols: types.NumBars,
		Zones: []types.Zone{
			{Name: "bars", C0: 0, C1: types.NumBars - 1, IsMain: true, WordInterval: 4},
		},
	}
	a.ArrangementController = modalinput.New(a.ArrangementGrid, a.Registers, a.Jumplist, &arrangementOps{app: a})
}

// FocusedController returns the Controller the currently focused grid
// should receive keypresses on.
func (a *App) FocusedController() *modalinput.Controller {
	switch a.Focus {
	case FocusPianoRoll:
		return a.PianoRollController
	case FocusArrangement:
		return a.ArrangementController
	default:
		return a.Controller
	}
}

// CycleFocus rotates focus steps -> piano roll -> arrangement -> steps.
func (a *App) CycleFocus() {
	a.Focus = (a.Focus + 1) % 3
}

// markDirty notifies the autosave debouncer after any model mutation.
func (a *App) markDirty() {
	a.Meta.ModifiedAt = time.Now()
	a.Autosave.Notify(func() (*music.Model, project.Meta) {
		return a.Model, a.Meta
	})
}

// Save flushes any pending autosave and writes the project immediately.
func (a *App) Save() error {
	a.Autosave.Flush()
	return a.Store.Save(a.Model, a.Meta)
}

// Load replaces the App's model and metadata with the project on disk.
// The journal is reset: undo history does not survive a reload.
func (a *App) Load() error {
	m, meta, err := a.Store.Load()
	if err != nil {
		return err
	}
	a.Model = m
	a.Meta = meta
	a.Journal = command.NewJournal()
	a.Scheduler.Model = m
	if a.SelectedChannel >= len(m.Channels) {
		a.SelectedChannel = 0
	}
	a.buildGrids(len(m.Channels))
	return nil
}

// SetAutosaveWindow replaces the autosave debouncer's quiescence window.
// Pending work queued under the previous debouncer is lost; call before
// any mutation has been made, e.g. right after New.
func (a *App) SetAutosaveWindow(window time.Duration) {
	a.Autosave = persistence.NewAutosaverWithWindow(a.Store, window)
}

// SampleDuration resolves ref against SampleRoot and returns the
// playable length read from its WAV header, without decoding the whole
// file.
func (a *App) SampleDuration(ref string) (time.Duration, error) {
	meta, err := sampleinfo.Inspect(filepath.Join(a.SampleRoot, ref))
	if err != nil {
		return 0, err
	}
	return meta.Duration, nil
}

// stepGridOps wires the modal input controller's Ops contract to the
// command journal: every cell write goes through a Command so it
// participates in undo/redo; reads access the current pattern directly.
type stepGridOps struct {
	app *App
}

func (o *stepGridOps) patternID() int { return o.app.Model.CurrentPatternID }

// CursorNoteName reports the note name (e.g. "c-4") of the first note
// starting at the cursor's row/column in the current pattern, or "---"
// if none starts there.
func (a *App) CursorNoteName() string {
	row, col := a.Controller.Cursor.Row, a.Controller.Cursor.Col
	if row < 0 || row >= len(a.Model.Channels) {
		return "---"
	}
	p := a.Model.CurrentPattern()
	for _, n := range p.Notes[row] {
		if n.StartStep == col {
			return music.MidiToNoteName(n.Pitch)
		}
	}
	return "---"
}

func (o *stepGridOps) GetDataInRange(rng types.Range) types.RegisterContent {
	p := o.app.Model.CurrentPattern()
	if rng.Kind == types.RangeLine {
		rows := make([][types.NumSteps]bool, 0, rng.End.Row-rng.Start.Row+1)
		for r := rng.Start.Row; r <= rng.End.Row; r++ {
			rows = append(rows, p.Steps[r])
		}
		return types.RegisterContent{Data: rows, Kind: types.RangeLine, TypeTag: "steps-rows"}
	}
	row := p.Steps[rng.Start.Row]
	bools := make([]bool, 0, rng.End.Col-rng.Start.Col+1)
	for c := rng.Start.Col; c <= rng.End.Col; c++ {
		bools = append(bools, row[c])
	}
	return types.RegisterContent{Data: bools, Kind: rng.Kind, TypeTag: "steps"}
}

func (o *stepGridOps) DeleteRange(rng types.Range) types.RegisterContent {
	content := o.GetDataInRange(rng)
	j := o.app.Journal
	pid := o.patternID()
	if rng.Kind == types.RangeLine {
		j.Batch("clear rows", func() {
			for r := rng.Start.Row; r <= rng.End.Row; r++ {
				j.Execute(&command.ClearChannelCommand{Model: o.app.Model, PatternID: pid, Channel: r})
			}
		})
	} else {
		j.Execute(&command.ClearStepRangeCommand{
			Model: o.app.Model, PatternID: pid, Channel: rng.Start.Row,
			S0: rng.Start.Col, S1: rng.End.Col,
		})
	}
	o.app.markDirty()
	return content
}

func (o *stepGridOps) InsertData(pos types.Position, content types.RegisterContent) {
	j := o.app.Journal
	pid := o.patternID()
	switch v := content.Data.(type) {
	case [][types.NumSteps]bool:
		j.Batch("paste rows", func() {
			for i, row := range v {
				r := pos.Row + i
				if r >= len(o.app.Model.Channels) {
					break
				}
				j.Execute(&command.SetStepsCommand{Model: o.app.Model, PatternID: pid, Channel: r, Start: 0, Bools: boolSliceFromRow(row)})
			}
		})
	case []bool:
		if content.TypeTag != "steps" {
			return // mismatched register content type: silent no-op
		}
		j.Execute(&command.SetStepsCommand{Model: o.app.Model, PatternID: pid, Channel: pos.Row, Start: pos.Col, Bools: v})
	default:
		return
	}
	o.app.markDirty()
}

func boolSliceFromRow(row [types.NumSteps]bool) []bool {
	out := make([]bool, types.NumSteps)
	copy(out, row[:])
	return out
}

func (o *stepGridOps) OnEscape(prevMode vimstate.Mode) {}

// OnCustomAction handles 'x' (toggle step), 'm' (cycle mute), 'u' (undo)
// and 's' (select this row's channel and switch focus to its piano
// roll) for the focused channel row.
func (o *stepGridOps) OnCustomAction(r rune, count int) bool {
	row := o.app.Controller.Cursor.Row
	col := o.app.Controller.Cursor.Col
	pid := o.patternID()
	switch r {
	case 'x':
		o.app.Journal.Execute(&command.ToggleStepCommand{Model: o.app.Model, PatternID: pid, Channel: row, Step: col})
		o.app.markDirty()
		return true
	case 'm':
		o.app.Journal.Execute(&command.CycleMuteStateCommand{Model: o.app.Model, Channel: row})
		o.app.markDirty()
		return true
	case 'u':
		o.app.Journal.Undo()
		o.app.markDirty()
		return true
	case 's':
		o.app.SelectedChannel = row
		o.app.Focus = FocusPianoRoll
		return true
	}
	return false
}

// pianoRollOps wires the piano-roll grid (rows = MIDI pitch, columns =
// step) to the command journal; it edits notes[SelectedChannel] in the
// current pattern.
type pianoRollOps struct {
	app *App
}

func (o *pianoRollOps) patternID() int { return o.app.Model.CurrentPatternID }
func (o *pianoRollOps) channel() int   { return o.app.SelectedChannel }

// notePaste is the piano-roll grid's register payload: one pasted note
// per entry, offset from the range's top-left cell so it replays at
// whatever cell InsertData is given.
type notePaste struct {
	PitchOffset int
	StepOffset  int
	Dur         int
}

func (o *pianoRollOps) notesInRange(rng types.Range) []types.Note {
	p := o.app.Model.Pattern(o.patternID())
	var out []types.Note
	for _, n := range p.Notes[o.channel()] {
		if n.Pitch < rng.Start.Row || n.Pitch > rng.End.Row {
			continue
		}
		if rng.Kind != types.RangeLine && (n.StartStep < rng.Start.Col || n.StartStep > rng.End.Col) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (o *pianoRollOps) GetDataInRange(rng types.Range) types.RegisterContent {
	notes := o.notesInRange(rng)
	pastes := make([]notePaste, len(notes))
	for i, n := range notes {
		pastes[i] = notePaste{PitchOffset: n.Pitch - rng.Start.Row, StepOffset: n.StartStep - rng.Start.Col, Dur: n.Duration}
	}
	return types.RegisterContent{Data: pastes, Kind: rng.Kind, TypeTag: "notes"}
}

func (o *pianoRollOps) DeleteRange(rng types.Range) types.RegisterContent {
	content := o.GetDataInRange(rng)
	notes := o.notesInRange(rng)
	pid := o.patternID()
	ch := o.channel()
	j := o.app.Journal
	j.Batch("clear notes", func() {
		for _, n := range notes {
			j.Execute(&command.RemoveNoteCommand{Model: o.app.Model, PatternID: pid, Channel: ch, NoteID: n.ID})
		}
	})
	o.app.markDirty()
	return content
}

// InsertData pastes notePaste entries anchored at pos, clipped per the
// range-bound violation rule: any note whose resolved pitch/step would
// fall outside [0,127]/[0,15] is dropped rather than clamped.
func (o *pianoRollOps) InsertData(pos types.Position, content types.RegisterContent) {
	pastes, ok := content.Data.([]notePaste)
	if !ok || content.TypeTag != "notes" {
		return // mismatched register content type: silent no-op
	}
	pid := o.patternID()
	ch := o.channel()
	j := o.app.Journal
	j.Batch("paste notes", func() {
		for _, np := range pastes {
			pitch := pos.Row + np.PitchOffset
			step := pos.Col + np.StepOffset
			if pitch < 0 || pitch > 127 || step < 0 || step >= types.NumSteps {
				continue
			}
			dur := np.Dur
			if dur < 1 {
				dur = 1
			}
			j.Execute(&command.AddNoteCommand{Model: o.app.Model, PatternID: pid, Channel: ch, Pitch: pitch, Start: step, Dur: dur})
		}
	})
	o.app.markDirty()
}

func (o *pianoRollOps) OnEscape(prevMode vimstate.Mode) {}

// OnCustomAction handles 'x' (toggle a note at the cursor, previewing it
// if the toggle added one), ' ' (preview only, no mutation), 'u' (undo)
// and 'm' (cycle the selected channel's mute state).
func (o *pianoRollOps) OnCustomAction(r rune, count int) bool {
	pitch := o.app.PianoRollController.Cursor.Row
	step := o.app.PianoRollController.Cursor.Col
	pid := o.patternID()
	ch := o.channel()
	switch r {
	case 'x':
		o.app.Journal.Execute(&command.ToggleNoteCommand{Model: o.app.Model, PatternID: pid, Channel: ch, Pitch: pitch, Start: step, Dur: 1})
		o.app.markDirty()
		if o.noteAt(pitch, step) {
			o.app.previewChannel(ch, pitch)
		}
		return true
	case ' ':
		o.app.previewChannel(ch, pitch)
		return true
	case 'm':
		o.app.Journal.Execute(&command.CycleMuteStateCommand{Model: o.app.Model, Channel: ch})
		o.app.markDirty()
		return true
	case 'u':
		o.app.Journal.Undo()
		o.app.markDirty()
		return true
	}
	return false
}

func (o *pianoRollOps) noteAt(pitch, step int) bool {
	p := o.app.Model.Pattern(o.patternID())
	for _, n := range p.Notes[o.channel()] {
		if n.Pitch == pitch && n.StartStep == step {
			return true
		}
	}
	return false
}

// previewChannel fires an exclusive preview for channel ch at pitch,
// matching the file-browser/piano-roll preview contract: a sample
// channel previews its sample pitched to pitch, a synth channel
// previews its patch at pitch.
func (a *App) previewChannel(ch, pitch int) {
	channel := a.Model.Channels[ch]
	switch channel.Kind {
	case types.ChannelSample:
		if channel.SampleRef != "" {
			a.Scheduler.PreviewSamplePitched(channel.SampleRef, pitch)
		}
	case types.ChannelSynth:
		a.Scheduler.PreviewSynth(channel.SynthPatch, pitch)
	}
}

// arrangementOps wires the arrangement grid (rows = pattern id, columns
// = bar) to the command journal; 'x' toggles a placement's presence at
// the cursor, 'm' toggles that pattern's arrangement mute.
type arrangementOps struct {
	app *App
}

type placementPaste struct {
	PatternOffset int
	BarOffset     int
	Length        int
}

func (o *arrangementOps) placementsInRange(rng types.Range) []types.PatternPlacement {
	var out []types.PatternPlacement
	for _, pl := range o.app.Model.Arrangement.Placements {
		if pl.PatternID < rng.Start.Row || pl.PatternID > rng.End.Row {
			continue
		}
		if rng.Kind != types.RangeLine && (pl.StartBar < rng.Start.Col || pl.StartBar > rng.End.Col) {
			continue
		}
		out = append(out, pl)
	}
	return out
}

func (o *arrangementOps) GetDataInRange(rng types.Range) types.RegisterContent {
	placements := o.placementsInRange(rng)
	pastes := make([]placementPaste, len(placements))
	for i, pl := range placements {
		pastes[i] = placementPaste{PatternOffset: pl.PatternID - rng.Start.Row, BarOffset: pl.StartBar - rng.Start.Col, Length: pl.Length}
	}
	return types.RegisterContent{Data: pastes, Kind: rng.Kind, TypeTag: "placements"}
}

func (o *arrangementOps) DeleteRange(rng types.Range) types.RegisterContent {
	content := o.GetDataInRange(rng)
	placements := o.placementsInRange(rng)
	j := o.app.Journal
	j.Batch("clear placements", func() {
		for _, pl := range placements {
			j.Execute(&command.TogglePlacementCommand{Model: o.app.Model, PatternID: pl.PatternID, StartBar: pl.StartBar, Length: pl.Length})
		}
	})
	o.app.markDirty()
	return content
}

// InsertData pastes placementPaste entries anchored at pos, dropping
// any whose resolved (pattern,bar) would fall outside the grid or
// whose bar+length would exceed NUM_BARS, per the range-bound clip
// rule.
func (o *arrangementOps) InsertData(pos types.Position, content types.RegisterContent) {
	pastes, ok := content.Data.([]placementPaste)
	if !ok || content.TypeTag != "placements" {
		return // mismatched register content type: silent no-op
	}
	j := o.app.Journal
	j.Batch("paste placements", func() {
		for _, pp := range pastes {
			patternID := pos.Row + pp.PatternOffset
			bar := pos.Col + pp.BarOffset
			length := pp.Length
			if length < 1 {
				length = 1
			}
			if patternID < 0 || patternID >= arrangementRows || bar < 0 || bar+length > types.NumBars {
				continue
			}
			j.Execute(&command.TogglePlacementCommand{Model: o.app.Model, PatternID: patternID, StartBar: bar, Length: length})
		}
	})
	o.app.markDirty()
}

func (o *arrangementOps) OnEscape(prevMode vimstate.Mode) {}

// OnCustomAction handles 'x' (toggle a placement at the cursor, default
// length 1), 'm' (toggle the cursor row's pattern as muted for
// arrangement playback) and 'u' (undo).
func (o *arrangementOps) OnCustomAction(r rune, count int) bool {
	row := o.app.ArrangementController.Cursor.Row
	col := o.app.ArrangementController.Cursor.Col
	switch r {
	case 'x':
		o.app.Journal.Execute(&command.TogglePlacementCommand{Model: o.app.Model, PatternID: row, StartBar: col, Length: 1})
		o.app.markDirty()
		return true
	case 'm':
		o.app.Journal.Execute(&command.ToggleMutedPatternCommand{Model: o.app.Model, PatternID: row})
		o.app.markDirty()
		return true
	case 'u':
		o.app.Journal.Undo()
		o.app.markDirty()
		return true
	}
	return false
}
