package playback

import (
	"context"
	"image"
	"sync"
	"time"

	"FrameLoom/model"
)

// ReadyState is the per-source readiness machine. A source starts pending,
// becomes ready once its decoder has metadata, or failed if decoding broke.
// A source that never reports within the bounded wait is marked
// ready-degraded: playback proceeds and the compositor's per-frame
// readiness check silently skips it until frames arrive.
type ReadyState int

const (
	StatePending ReadyState = iota
	StateReady
	StateFailed
	StateReadyDegraded
)

func (s ReadyState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateReadyDegraded:
		return "ready-degraded"
	}
	return "unknown"
}

// MediaElement is one decodable media source bound to the timeline.
// Implementations wrap whatever actually decodes bytes (a browser media
// element, an ffmpeg pipe, a test fake). Play/Pause/SeekTo complete their
// effect before returning; SeekTo in particular must not return while the
// element would still report a stale position.
type MediaElement interface {
	Kind() model.MediaType
	Play() error
	Pause()
	SeekTo(offsetMs int64) error
	PositionMs() int64
	Playing() bool
	SetVolume(v float64)

	// Frame returns the currently decoded frame, nil if none is available
	// yet. Dimensions are zero until metadata is known.
	Frame() image.Image
	Dimensions() (w, h int)
}

// Source pairs a media element with its readiness machine.
type Source struct {
	el MediaElement

	mu      sync.Mutex
	state   ReadyState
	settled chan struct{} // closed on the pending -> ready|failed transition
}

// NewSource wraps an element in the pending state.
func NewSource(el MediaElement) *Source {
	return &Source{el: el, settled: make(chan struct{})}
}

// Element returns the wrapped media element.
func (s *Source) Element() MediaElement { return s.el }

// State returns the current readiness state.
func (s *Source) State() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Usable reports whether the engine may drive this source. Degraded
// sources are driven too; only failed and still-pending ones are not.
func (s *Source) Usable() bool {
	switch s.State() {
	case StateReady, StateReadyDegraded:
		return true
	}
	return false
}

// MarkReady moves a pending or degraded source to ready. Idempotent;
// a failed source stays failed.
func (s *Source) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePending:
		s.state = StateReady
		close(s.settled)
	case StateReadyDegraded:
		// Late metadata arrived after the bounded wait expired.
		s.state = StateReady
	}
}

// MarkFailed moves a pending source to failed. Idempotent.
func (s *Source) MarkFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePending {
		s.state = StateFailed
		close(s.settled)
	}
}

// AwaitReady blocks until the source settles or the bounded wait expires.
// On expiry the source transitions to ready-degraded and playback proceeds
// without it being decodable yet. Returns the resulting state.
func (s *Source) AwaitReady(ctx context.Context, timeout time.Duration) ReadyState {
	s.mu.Lock()
	if s.state != StatePending {
		st := s.state
		s.mu.Unlock()
		return st
	}
	settled := s.settled
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-settled:
		return s.State()
	case <-ctx.Done():
		return s.degrade()
	case <-timer.C:
		return s.degrade()
	}
}

func (s *Source) degrade() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePending {
		s.state = StateReadyDegraded
	}
	return s.state
}
