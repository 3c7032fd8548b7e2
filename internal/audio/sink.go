// Package audio delivers APU samples to speakers and recordings.
package audio

import "errors"

// Sink consumes mono float32 samples in the range [0, 1).
type Sink interface {
	Write(samples []float32) error
	Close() error
}

// Discard drops every sample.
type Discard struct{}

func (Discard) Write([]float32) error { return nil }
func (Discard) Close() error          { return nil }

// MultiSink fans samples out to several sinks.
type MultiSink []Sink

// Write writes to every sink and joins their errors
func (m MultiSink) Write(samples []float32) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(samples); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
