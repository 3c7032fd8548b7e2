package statsview

import (
	"errors"
	"fmt"
)

// DefaultAddress is where the viewer listens unless told otherwise.
const DefaultAddress = "localhost:12600"

// chartsPath is the page the viewer serves its charts on. pprof handlers sit
// next to it under /debug/pprof/.
const chartsPath = "/debug/statsview"

// ErrUnavailable is returned by Start when the viewer was not compiled in.
var ErrUnavailable = errors.New("stats viewer not built in (build with -tags statsview)")

// URL returns the chart page for a viewer listening on address.
func URL(address string) string {
	if address == "" {
		address = DefaultAddress
	}
	return fmt.Sprintf("http://%s%s", address, chartsPath)
}
