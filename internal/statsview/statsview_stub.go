//go:build !statsview

package statsview

// Server is the stand-in for builds without the viewer; Start never returns
// one.
type Server struct{}

// Start always fails with ErrUnavailable
func Start(address string) (*Server, error) {
	return nil, ErrUnavailable
}

func (s *Server) URL() string { return "" }
func (s *Server) Stop() error { return nil }

// Available reports whether the viewer was compiled in
func Available() bool {
	return false
}
