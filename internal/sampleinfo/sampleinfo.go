// Package sampleinfo inspects a WAV file's header to produce the
// lightweight metadata a channel's sample assignment caches: read the
// RIFF/WAVE header and frame count only, never decode the PCM payload.
package sampleinfo

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Metadata is what Inspect reports about a sample file.
type Metadata struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
}

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 65534
)

// Inspect opens path and reads its WAV header. If the file cannot be
// opened or is not a valid WAV, the caller should log and continue
// rather than treat it as fatal.
func Inspect(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Metadata{}, fmt.Errorf("%s: invalid WAV file", path)
	}
	d.ReadInfo()

	meta := Metadata{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}

	if int(d.WavAudioFormat) != wavFormatPCM && int(d.WavAudioFormat) != wavFormatExtensible {
		dur, err := d.Duration()
		if err != nil {
			return Metadata{}, fmt.Errorf("duration (non-PCM) %s: %w", path, err)
		}
		meta.Duration = dur
		return meta, nil
	}

	if d.SampleRate == 0 || d.NumChans == 0 || d.BitDepth == 0 {
		return Metadata{}, fmt.Errorf("%s: incomplete WAV header", path)
	}

	info, err := f.Stat()
	if err != nil {
		return Metadata{}, fmt.Errorf("stat %s: %w", path, err)
	}
	bytesPerSample := int64(d.BitDepth / 8)
	dataBytes := info.Size() - 44 // past the canonical 44-byte header
	if dataBytes < 0 {
		dataBytes = 0
	}
	frames := dataBytes / (bytesPerSample * int64(d.NumChans))
	meta.Duration = time.Duration(float64(frames) / float64(d.SampleRate) * float64(time.Second))

	return meta, nil
}
