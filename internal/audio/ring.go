package audio

import "sync"

// ring is a fixed-size sample FIFO shared between the emulation goroutine and
// the audio driver. Pushing into a full ring overwrites the oldest samples.
type ring struct {
	mu    sync.Mutex
	data  []float32
	start int
	count int
	last  float32
}

func newRing(size int) *ring {
	return &ring{data: make([]float32, size)}
}

func (r *ring) push(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		end := (r.start + r.count) % len(r.data)
		r.data[end] = s
		if r.count == len(r.data) {
			r.start = (r.start + 1) % len(r.data)
		} else {
			r.count++
		}
	}
}

// pop fills out. On underrun the last sample is held to avoid a click.
// It returns the number of real samples copied.
func (r *ring) pop(out []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(out), r.count)
	for i := 0; i < n; i++ {
		out[i] = r.data[(r.start+i)%len(r.data)]
	}
	r.start = (r.start + n) % len(r.data)
	r.count -= n
	if n > 0 {
		r.last = out[n-1]
	}
	for i := n; i < len(out); i++ {
		out[i] = r.last
	}
	return n
}

func (r *ring) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
