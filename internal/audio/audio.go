// Package audio defines the audio collaborator contract that the
// playback scheduler drives. Concrete adapters (oscadapter) implement
// Sink over a real transport.
package audio

import "github.com/loopbyte/seqtrack/internal/types"

// Sink is the audio collaborator contract: triggering steps/notes
// during playback, and exclusive preview triggers during editing. It
// matches playback.AudioSink exactly so any Sink can drive a
// playback.Scheduler.
type Sink interface {
	TriggerSample(path string)
	TriggerSamplePitched(path string, midiPitch int)
	TriggerSynth(patch types.SynthPatch, midiPitch int, durationSeconds float64)
	PreviewSample(path string)
	PreviewSamplePitched(path string, midiPitch int)
	PreviewSynth(patch types.SynthPatch, midiPitch int)
	StopPreview()
	StopAll()
}

// NopSink discards every call. Useful for headless tests and for
// running the core without an audio backend configured.
type NopSink struct{}

func (NopSink) TriggerSample(string)                                 {}
func (NopSink) TriggerSamplePitched(string, int)                     {}
func (NopSink) TriggerSynth(types.SynthPatch, int, float64)          {}
func (NopSink) PreviewSample(string)                                 {}
func (NopSink) PreviewSamplePitched(string, int)                     {}
func (NopSink) PreviewSynth(types.SynthPatch, int)                   {}
func (NopSink) StopPreview()                                         {}
func (NopSink) StopAll()                                             {}
