// Package synth defines the Synthesizer interface for text-to-speech
// backends and the Audio value they produce.
//
// Backends turn one utterance of cleaned narration into raw 16-bit
// little-endian PCM. Implementations must be safe for concurrent use.
package synth

import (
	"context"
	"encoding/binary"
	"errors"
	"time"
)

// ErrEmptyAudio is returned when a backend finishes without producing audio.
var ErrEmptyAudio = errors.New("synth: backend produced no audio")

// BitsPerSample is the sample width of every Audio value.
const BitsPerSample = 16

// Synthesizer converts text to speech.
type Synthesizer interface {
	// Synthesize renders text as PCM audio. It returns ErrEmptyAudio when the
	// backend succeeds but yields no samples.
	Synthesize(ctx context.Context, text string) (*Audio, error)

	// Name identifies the backend in logs and metrics.
	Name() string
}

// Audio is raw signed 16-bit little-endian PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the playing time of the audio.
func (a *Audio) Duration() time.Duration {
	bytesPerSecond := a.SampleRate * a.Channels * BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(len(a.PCM)) * time.Second / time.Duration(bytesPerSecond)
}

// WAV wraps the PCM data in a canonical 44-byte RIFF/WAVE header.
func (a *Audio) WAV() []byte {
	byteRate := a.SampleRate * a.Channels * BitsPerSample / 8
	blockAlign := a.Channels * BitsPerSample / 8
	dataSize := len(a.PCM)

	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM sub-chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(buf[22:24], uint16(a.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(a.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], BitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], a.PCM)

	return buf
}
