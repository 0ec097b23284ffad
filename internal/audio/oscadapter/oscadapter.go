// Package oscadapter implements the audio.Sink contract over OSC: one
// client, one message per call, address-then-argument Append calls,
// fire-and-forget Send.
package oscadapter

import (
	"log"

	"github.com/hypebeast/go-osc/osc"

	"github.com/loopbyte/seqtrack/internal/types"
)

// Client sends playback and preview triggers as OSC messages to a
// single backend address (e.g. a SuperCollider server).
type Client struct {
	osc *osc.Client
}

func New(host string, port int) *Client {
	return &Client{osc: osc.NewClient(host, port)}
}

func (c *Client) send(msg *osc.Message) {
	if err := c.osc.Send(msg); err != nil {
		log.Printf("osc send %s: %v", msg.Address, err)
	}
}

func (c *Client) TriggerSample(path string) {
	msg := osc.NewMessage("/trigger_sample")
	msg.Append(path)
	c.send(msg)
}

func (c *Client) TriggerSamplePitched(path string, midiPitch int) {
	msg := osc.NewMessage("/trigger_sample_pitched")
	msg.Append(path)
	msg.Append(int32(midiPitch))
	c.send(msg)
}

func (c *Client) TriggerSynth(patch types.SynthPatch, midiPitch int, durationSeconds float64) {
	msg := osc.NewMessage("/trigger_synth")
	msg.Append(int32(midiPitch))
	msg.Append(float32(durationSeconds))
	appendPatch(msg, patch)
	c.send(msg)
}

func (c *Client) PreviewSample(path string) {
	msg := osc.NewMessage("/preview_sample")
	msg.Append(path)
	c.send(msg)
}

func (c *Client) PreviewSamplePitched(path string, midiPitch int) {
	msg := osc.NewMessage("/preview_sample_pitched")
	msg.Append(path)
	msg.Append(int32(midiPitch))
	c.send(msg)
}

func (c *Client) PreviewSynth(patch types.SynthPatch, midiPitch int) {
	msg := osc.NewMessage("/preview_synth")
	msg.Append(int32(midiPitch))
	appendPatch(msg, patch)
	c.send(msg)
}

func (c *Client) StopPreview() {
	c.send(osc.NewMessage("/stop_preview"))
}

func (c *Client) StopAll() {
	c.send(osc.NewMessage("/stop_all"))
}

func appendPatch(msg *osc.Message, patch types.SynthPatch) {
	msg.Append(patch.Name)
	for _, o := range patch.Oscillators {
		msg.Append(o.Enabled)
		msg.Append(int32(o.Waveform))
		msg.Append(int32(o.Coarse))
		msg.Append(float32(o.Fine))
		msg.Append(float32(o.Volume))
	}
	msg.Append(float32(patch.Envelope.Attack))
	msg.Append(float32(patch.Envelope.Decay))
	msg.Append(float32(patch.Envelope.Sustain))
	msg.Append(float32(patch.Envelope.Release))
	msg.Append(int32(patch.Filter.Type))
	msg.Append(float32(patch.Filter.CutoffHz))
	msg.Append(float32(patch.Filter.Resonance))
}
