package sampleinfo

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMinimalWAV writes a canonical 44-byte-header PCM WAV file with
// numFrames frames of silence, at the given sample rate / channels /
// bit depth.
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
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func TestInspectReadsHeaderWithoutFullDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeMinimalWAV(t, path, 44100, 2, 16, 44100) // 1 second, stereo, 16-bit

	meta, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, meta.SampleRate)
	assert.Equal(t, 2, meta.Channels)
	assert.InDelta(t, 1.0, meta.Duration.Seconds(), 0.01)
}

func TestInspectRejectsNonWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-wav.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file at all"), 0644))

	_, err := Inspect(path)
	assert.Error(t, err)
}

func TestInspectMissingFileErrors(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
