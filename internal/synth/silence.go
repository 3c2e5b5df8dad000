package synth

import (
	"bytes"
	"fmt"
	"os"
)

// MPEG-1 Layer III, no CRC, 128 kbit/s, 44.1 kHz, mono. A frame with zeroed side
// information and main data decodes to 1152 samples of silence.
var silentFrameHeader = [4]byte{0xFF, 0xFB, 0x90, 0xC0}

const (
	samplesPerFrame = 1152
	sampleRate      = 44100
	bitRate         = 128000
	// 144 * bitrate / samplerate, no padding.
	frameSize = 144 * bitRate / sampleRate
)

// SilentMP3 returns an MP3 stream of at least durationMS milliseconds of silence.
func SilentMP3(durationMS int) []byte {
	frames := (durationMS*sampleRate/1000 + samplesPerFrame - 1) / samplesPerFrame
	if frames < 1 {
		frames = 1
	}

	frame := make([]byte, frameSize)
	copy(frame, silentFrameHeader[:])
	return bytes.Repeat(frame, frames)
}

// WriteSilence writes durationMS of silent MP3 audio to path.
func WriteSilence(path string, durationMS int) error {
	if err := os.WriteFile(path, SilentMP3(durationMS), 0o644); err != nil {
		return fmt.Errorf("write silence: %w", err)
	}
	return nil
}
