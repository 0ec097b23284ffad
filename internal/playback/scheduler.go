// Package playback implements the tempo-driven tick scheduler: pattern-
// vs arrangement-mode transport, per-tick trigger selection honoring
// mute/solo, and BPM live-reload.
package playback

import (
	"math"
	"sort"
	"time"

	"github.com/loopbyte/seqtrack/internal/music"
	"github.com/loopbyte/seqtrack/internal/types"
)

type Mode int

const (
	ModePattern Mode = iota
	ModeArrangement
)

// TriggerKind distinguishes the audio collaborator call a Trigger maps
// to.
type TriggerKind int

const (
	TriggerSample TriggerKind = iota
	TriggerSamplePitched
	TriggerSynth
)

// Trigger is one emitted playback event.
type Trigger struct {
	Kind            TriggerKind
	ChannelIndex    int
	SampleRef       string
	Pitch           int
	Patch           types.SynthPatch
	DurationSeconds float64
}

// AudioSink is the audio collaborator contract this scheduler drives.
type AudioSink interface {
	TriggerSample(path string)
	TriggerSamplePitched(path string, midiPitch int)
	TriggerSynth(patch types.SynthPatch, midiPitch int, durationSeconds float64)
	PreviewSample(path string)
	PreviewSamplePitched(path string, midiPitch int)
	PreviewSynth(patch types.SynthPatch, midiPitch int)
	StopPreview()
	StopAll()
}

// Scheduler holds the transport state for tempo-driven playback. The
// zero value is not ready for use; construct with New.
type Scheduler struct {
	Model *music.Model
	Audio AudioSink

	Playing        bool
	Mode           Mode
	BPM            float64
	PlayheadStep   int
	ArrangementBar int
}

const (
	minBPM = 20
	maxBPM = 999
)

func New(m *music.Model, audio AudioSink) *Scheduler {
	return &Scheduler{Model: m, Audio: audio, BPM: 120}
}

// Period returns the current sixteenth-note tick period: 60/bpm/4
// seconds.
func (s *Scheduler) Period() time.Duration {
	bpm := s.BPM
	if bpm <= 0 {
		bpm = 1
	}
	secs := 60.0 / bpm / 4.0
	return time.Duration(secs * float64(time.Second))
}

// SetBPM live-reloads the tempo without perturbing PlayheadStep, per the
// BPM-invariance-of-phase property; the caller is responsible for
// rescheduling its periodic timer with the new Period().
func (s *Scheduler) SetBPM(bpm float64) {
	if bpm < minBPM {
		bpm = minBPM
	}
	if bpm > maxBPM {
		bpm = maxBPM
	}
	s.BPM = bpm
}

// Start fires the current step immediately and marks the transport
// playing in the given mode; the caller schedules the first periodic
// tick separately (e.g. via a bubbletea tea.Tick command).
func (s *Scheduler) Start(mode Mode) []Trigger {
	s.Mode = mode
	s.Playing = true
	return s.fire()
}

// Stop cancels playback. PlayheadStep and ArrangementBar are left as-is.
func (s *Scheduler) Stop() {
	s.Playing = false
}

// Tick advances the transport by one sixteenth note and fires the new
// step, honoring the pattern-mode / arrangement-mode advance rules.
func (s *Scheduler) Tick() []Trigger {
	if !s.Playing {
		return nil
	}
	s.PlayheadStep = (s.PlayheadStep + 1) % types.NumSteps
	if s.Mode == ModeArrangement && s.PlayheadStep == 0 {
		s.ArrangementBar = (s.ArrangementBar + 1) % types.NumBars
	}
	return s.fire()
}

func (s *Scheduler) fire() []Trigger {
	var patterns []*types.Pattern
	if s.Mode == ModeArrangement {
		for _, pl := range s.Model.Arrangement.ActiveAt(s.ArrangementBar) {
			patterns = append(patterns, s.Model.Pattern(pl.PatternID))
		}
	} else {
		patterns = []*types.Pattern{s.Model.CurrentPattern()}
	}

	var triggers []Trigger
	for _, p := range patterns {
		for ch := 0; ch < len(s.Model.Channels); ch++ {
			if s.Model.EffectivelyMuted(ch) {
				continue
			}
			channel := s.Model.Channels[ch]
			notes := notesAtStep(p.Notes[ch], s.PlayheadStep)

			switch channel.Kind {
			case types.ChannelSample:
				if p.Steps[ch][s.PlayheadStep] && channel.SampleRef != "" {
					triggers = append(triggers, Trigger{Kind: TriggerSample, ChannelIndex: ch, SampleRef: channel.SampleRef})
				}
				for _, n := range notes {
					if channel.SampleRef == "" {
						continue
					}
					triggers = append(triggers, Trigger{
						Kind: TriggerSamplePitched, ChannelIndex: ch, SampleRef: channel.SampleRef,
						Pitch: n.Pitch,
					})
				}
			case types.ChannelSynth:
				for _, n := range notes {
					triggers = append(triggers, Trigger{
						Kind: TriggerSynth, ChannelIndex: ch, Patch: channel.SynthPatch,
						Pitch: n.Pitch, DurationSeconds: float64(n.Duration) * s.Period().Seconds(),
					})
				}
			}
		}
	}

	for _, tr := range triggers {
		s.emit(tr)
	}
	return triggers
}

func (s *Scheduler) emit(tr Trigger) {
	switch tr.Kind {
	case TriggerSample:
		s.Audio.TriggerSample(tr.SampleRef)
	case TriggerSamplePitched:
		s.Audio.TriggerSamplePitched(tr.SampleRef, tr.Pitch)
	case TriggerSynth:
		s.Audio.TriggerSynth(tr.Patch, tr.Pitch, tr.DurationSeconds)
	}
}

// PitchRate is the playback-rate formula for a pitched sample trigger,
// base MIDI 60.
func PitchRate(pitch int) float64 {
	return math.Pow(2, float64(pitch-60)/12)
}

func notesAtStep(notes map[int]types.Note, step int) []types.Note {
	var out []types.Note
	for _, n := range notes {
		if n.StartStep == step {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PreviewSample/PreviewSamplePitched/PreviewSynth are exclusive: the
// audio collaborator stops any prior preview before starting a new one.
func (s *Scheduler) PreviewSample(path string) {
	if path == "" {
		return
	}
	s.Audio.StopPreview()
	s.Audio.PreviewSample(path)
}

func (s *Scheduler) PreviewSamplePitched(path string, pitch int) {
	if path == "" {
		return
	}
	s.Audio.StopPreview()
	s.Audio.PreviewSamplePitched(path, pitch)
}

func (s *Scheduler) PreviewSynth(patch types.SynthPatch, pitch int) {
	s.Audio.StopPreview()
	s.Audio.PreviewSynth(patch, pitch)
}
