package playback

import "time"

// Clock abstracts wall time so the engine can be driven deterministically
// in tests. The engine anchors its virtual timeline clock to Clock.Now()
// when playback starts and derives every published time from it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
