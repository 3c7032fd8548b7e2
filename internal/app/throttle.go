package app

import "time"

// Throttle paces a loop to a target frame rate. Deadlines advance by a fixed
// step so short sleeps average out; a loop that falls more than one frame
// behind drops the backlog instead of racing to catch up.
type Throttle struct {
	frameTime time.Duration
	next      time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewThrottle creates a throttle for fps frames per second
func NewThrottle(fps float64) *Throttle {
	if fps <= 0 {
		fps = NTSCFrameRate
	}
	return &Throttle{
		frameTime: time.Duration(float64(time.Second) / fps),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// FrameTime returns the target duration of one frame
func (t *Throttle) FrameTime() time.Duration {
	return t.frameTime
}

// Wait blocks until the current frame's budget is spent.
func (t *Throttle) Wait() {
	now := t.now()
	if t.next.IsZero() {
		t.next = now.Add(t.frameTime)
		return
	}

	if remaining := t.next.Sub(now); remaining > 0 {
		t.sleep(remaining)
		t.next = t.next.Add(t.frameTime)
		return
	}

	if now.Sub(t.next) > t.frameTime {
		t.next = now.Add(t.frameTime)
		return
	}
	t.next = t.next.Add(t.frameTime)
}

// Reset forgets the schedule. The next Wait starts a new one.
func (t *Throttle) Reset() {
	t.next = time.Time{}
}
