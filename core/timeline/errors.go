package timeline

import "errors"

// Rejection errors returned by mutating store operations. Every rejection
// is a pure no-op: the store state is untouched when one of these comes
// back, so callers can surface them as a refused edit without any repair.
var (
	ErrTrackNotFound     = errors.New("timeline: track not found")
	ErrClipNotFound      = errors.New("timeline: clip not found")
	ErrMediaNotFound     = errors.New("timeline: media file not found")
	ErrTrackTypeMismatch = errors.New("timeline: clip kind does not match track type")
	ErrTrackCapReached   = errors.New("timeline: track limit for this type reached")
	ErrTrackLocked       = errors.New("timeline: track is locked")
	ErrCollision         = errors.New("timeline: placement collides with an existing clip")
	ErrInvalidPlacement  = errors.New("timeline: invalid placement")
	ErrInvalidKind       = errors.New("timeline: unknown clip kind")
)
