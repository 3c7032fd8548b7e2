//go:build !headless

package audio

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays samples through the host audio device.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *ring
	volume float32

	scratch []float32
	mu      sync.Mutex
}

// NewSpeaker opens the audio device. volume is clamped to [0, 1].
func NewSpeaker(sampleRate int, volume float64) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	s := &Speaker{
		ctx:    ctx,
		ring:   newRing(sampleRate / 4),
		volume: float32(math.Max(0, math.Min(1, volume))),
	}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	log.Printf("[AUDIO] Speaker open at %d Hz", sampleRate)
	return s, nil
}

// Write queues samples for playback
func (s *Speaker) Write(samples []float32) error {
	s.ring.push(samples)
	return nil
}

// Read implements io.Reader for the oto player
func (s *Speaker) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p) / 4
	if cap(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	samples := s.scratch[:n]
	s.ring.pop(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v*s.volume))
	}
	return n * 4, nil
}

// Close stops playback
func (s *Speaker) Close() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
