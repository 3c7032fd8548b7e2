//go:build !statsview

package statsview

import (
	"errors"
	"testing"
)

func TestStartWithoutViewer(t *testing.T) {
	if Available() {
		t.Fatal("Available in a build without the viewer")
	}
	server, err := Start("")
	if !errors.Is(err, ErrUnavailable) || server != nil {
		t.Errorf("Start = %v, %v; want nil, ErrUnavailable", server, err)
	}
}
