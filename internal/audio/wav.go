package audio

import (
	"fmt"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WAVRecorder writes samples to a 16-bit mono WAV file.
type WAVRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buffer  *goaudio.IntBuffer
	path    string
	written int
}

// NewWAVRecorder creates path and prepares it for sampleRate mono audio.
func NewWAVRecorder(path string, sampleRate int) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return &WAVRecorder{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, wavBitDepth, 1, 1),
		buffer: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
		path: path,
	}, nil
}

// Write converts samples to signed 16-bit PCM centred on zero
func (w *WAVRecorder) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	data := w.buffer.Data[:0]
	for _, s := range samples {
		data = append(data, toPCM16(s))
	}
	w.buffer.Data = data
	if err := w.encoder.Write(w.buffer); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	w.written += len(samples)
	return nil
}

// Close finalizes the WAV header and closes the file
func (w *WAVRecorder) Close() error {
	if w.encoder == nil {
		return nil
	}
	err := w.encoder.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.encoder = nil
	log.Printf("[AUDIO] Recorded %d samples to %s", w.written, w.path)
	return err
}

// toPCM16 maps [0, 1) onto the full signed 16-bit range.
func toPCM16(s float32) int {
	v := int((s*2 - 1) * 32767)
	return max(-32768, min(32767, v))
}
