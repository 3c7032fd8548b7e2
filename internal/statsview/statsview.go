//go:build statsview

package statsview

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// sampleIntervalMillis is how often heap and goroutine figures are sampled.
const sampleIntervalMillis = 1000

// Server is a running stats viewer.
type Server struct {
	address string
	manager *statsview.ViewManager
	done    chan error
}

// Start serves the viewer on address in the background. Listen failures are
// logged and reported again by Stop.
func Start(address string) (*Server, error) {
	if address == "" {
		address = DefaultAddress
	}

	// The viewer reads its settings from package state when the manager is
	// built.
	viewer.SetConfiguration(
		viewer.WithAddr(address),
		viewer.WithInterval(sampleIntervalMillis),
	)
	s := &Server{
		address: address,
		manager: statsview.New(),
		done:    make(chan error, 1),
	}

	go func() {
		err := s.manager.Start()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			log.Printf("[STATS] Viewer on %s stopped: %v", address, err)
		}
		s.done <- err
	}()
	return s, nil
}

// URL returns the chart page of this server
func (s *Server) URL() string {
	return URL(s.address)
}

// Stop shuts the server down and returns the error it failed with, if any.
func (s *Server) Stop() error {
	s.manager.Stop()
	return <-s.done
}

// Available reports whether the viewer was compiled in
func Available() bool {
	return true
}
