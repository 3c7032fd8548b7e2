//go:build headless

package audio

import "errors"

// Speaker is unavailable in headless builds.
type Speaker struct{}

// NewSpeaker always fails in headless builds
func NewSpeaker(sampleRate int, volume float64) (*Speaker, error) {
	return nil, errors.New("audio output not available in headless build")
}

func (s *Speaker) Write([]float32) error { return nil }
func (s *Speaker) Close() error          { return nil }
