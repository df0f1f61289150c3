package timeline

import (
	"FrameLoom/logger"
	"FrameLoom/model"

	"github.com/google/uuid"
)

// ResizeEdge names which clip edge a resize drags.
type ResizeEdge string

const (
	EdgeLeft  ResizeEdge = "left"
	EdgeRight ResizeEdge = "right"
)

// ResizeClip drags one edge of a clip to a new timeline time.
//
// Right-edge resizes change duration and source end only, clamped so the
// duration stays >= MinClipDuration and, for bounded sources, the source
// end never passes the source duration.
//
// Left-edge resizes move timeline start, duration and source start
// jointly: extending left decreases the source start (clamped to >= 0 for
// bounded sources, unrestricted for unbounded ones), shrinking from the
// left advances both by the same delta, capped so the duration stays
// >= MinClipDuration. The start never goes below timeline zero.
//
// The fully computed placement is validated against collision on the
// clip's own track before anything is committed; on collision the clip is
// unchanged.
func (s *Store) ResizeClip(clipID string, edge ResizeEdge, newEdgeTime int64) error {
	s.mu.Lock()
	clip, ok := s.clips[clipID]
	if !ok {
		s.mu.Unlock()
		return ErrClipNotFound
	}
	if track := s.trackByID(clip.TrackID); track != nil && track.Locked {
		s.mu.Unlock()
		return ErrTrackLocked
	}

	isMedia, bounded, sourceDuration, err := s.sourceBoundsLocked(clip)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	staged := clip.Clone()
	switch edge {
	case EdgeRight:
		newDuration := newEdgeTime - clip.TimelineStart
		if newDuration < model.MinClipDuration {
			newDuration = model.MinClipDuration
		}
		if isMedia && bounded {
			if max := sourceDuration - clip.SourceStart; newDuration > max {
				newDuration = max
			}
		}
		staged.Duration = newDuration
		if isMedia {
			staged.SourceEnd = staged.SourceStart + newDuration
		}

	case EdgeLeft:
		// delta > 0 shrinks from the left, delta < 0 extends left.
		delta := newEdgeTime - clip.TimelineStart
		if clip.Duration-delta < model.MinClipDuration {
			delta = clip.Duration - model.MinClipDuration
		}
		if isMedia && bounded && clip.SourceStart+delta < 0 {
			delta = -clip.SourceStart
		}
		if clip.TimelineStart+delta < 0 {
			delta = -clip.TimelineStart
		}
		staged.TimelineStart = clip.TimelineStart + delta
		staged.Duration = clip.Duration - delta
		if isMedia {
			staged.SourceStart = clip.SourceStart + delta
			staged.SourceEnd = staged.SourceStart + staged.Duration
		}

	default:
		s.mu.Unlock()
		return ErrInvalidPlacement
	}

	if s.hasCollisionLocked(clip.TrackID, staged.TimelineStart, staged.Duration, clipID) {
		s.mu.Unlock()
		return ErrCollision
	}

	*clip = *staged
	s.recomputeDurationLocked()
	s.mu.Unlock()

	logger.Debug("clip resized",
		logger.String("clipId", clipID),
		logger.String("edge", string(edge)),
		logger.Int64("start", staged.TimelineStart),
		logger.Int64("duration", staged.Duration))
	s.notify()
	return nil
}

// SplitClip cuts a clip at a timeline time, producing two adjacent clips
// that together cover the original span with the source range carried
// over. Both halves must be at least MinClipDuration long.
func (s *Store) SplitClip(clipID string, atTime int64) (*model.Clip, error) {
	s.mu.Lock()
	clip, ok := s.clips[clipID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrClipNotFound
	}
	if track := s.trackByID(clip.TrackID); track != nil && track.Locked {
		s.mu.Unlock()
		return nil, ErrTrackLocked
	}
	leftLen := atTime - clip.TimelineStart
	rightLen := clip.End() - atTime
	if leftLen < model.MinClipDuration || rightLen < model.MinClipDuration {
		s.mu.Unlock()
		return nil, ErrInvalidPlacement
	}

	right := clip.Clone()
	right.ID = uuid.NewString()
	right.TimelineStart = atTime
	right.Duration = rightLen

	switch clip.Kind {
	case model.ClipKindVideo, model.ClipKindAudio:
		right.SourceStart = clip.SourceStart + leftLen
		right.SourceEnd = clip.SourceEnd
		clip.SourceEnd = clip.SourceStart + leftLen
	case model.ClipKindText:
		// Text carries no source range; both halves keep the styling.
	default:
		s.mu.Unlock()
		return nil, ErrInvalidKind
	}

	clip.Duration = leftLen
	s.clips[right.ID] = right
	s.recomputeDurationLocked()
	dup := right.Clone()
	s.mu.Unlock()

	logger.Debug("clip split",
		logger.String("clipId", clipID),
		logger.String("newClipId", dup.ID),
		logger.Int64("at", atTime))
	s.notify()
	return dup, nil
}

// sourceBoundsLocked resolves whether a clip reads from a media source and
// what its bounds are. Unknown kinds are rejected rather than mishandled.
func (s *Store) sourceBoundsLocked(clip *model.Clip) (isMedia, bounded bool, sourceDuration int64, err error) {
	switch clip.Kind {
	case model.ClipKindVideo, model.ClipKindAudio:
		media, ok := s.media[clip.SourceID]
		if !ok {
			return false, false, 0, ErrMediaNotFound
		}
		return true, media.Bounded(), media.Duration, nil
	case model.ClipKindText:
		return false, false, 0, nil
	default:
		return false, false, 0, ErrInvalidKind
	}
}
