package timeline

import (
	"testing"

	"FrameLoom/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clipFixture places one clip from a bounded 10s source at timeline 2000
// with an interior source window [1000, 5000).
func clipFixture(t *testing.T) (*Store, *model.Clip) {
	t.Helper()
	s := newTestStore(t)
	track, err := s.AddTrack(model.TrackTypeVideo)
	require.NoError(t, err)
	mf := addVideoMedia(t, s, 10000)

	clip, err := s.AddClip(mf.ID, track.ID, 2000)
	require.NoError(t, err)

	// Shape the source window by trimming both edges first.
	require.NoError(t, s.ResizeClip(clip.ID, EdgeRight, 2000+5000))
	require.NoError(t, s.ResizeClip(clip.ID, EdgeLeft, 3000))
	got := s.Clip(clip.ID)
	require.EqualValues(t, 3000, got.TimelineStart)
	require.EqualValues(t, 4000, got.Duration)
	require.EqualValues(t, 1000, got.SourceStart)
	require.EqualValues(t, 5000, got.SourceEnd)

	// Normalize to start 2000 keeping the window.
	require.NoError(t, s.MoveClip(clip.ID, track.ID, 2000))
	return s, s.Clip(clip.ID)
}

func TestResizeRight_ExtendsWithinSourceBounds(t *testing.T) {
	s, clip := clipFixture(t)

	// Asking far past the source end clamps to the remaining source media:
	// sourceDuration - sourceStart = 10000 - 1000 = 9000.
	require.NoError(t, s.ResizeClip(clip.ID, EdgeRight, clip.TimelineStart+20000))
	got := s.Clip(clip.ID)
	assert.EqualValues(t, 9000, got.Duration)
	assert.EqualValues(t, 1000, got.SourceStart)
	assert.EqualValues(t, 10000, got.SourceEnd)
}

func TestResizeRight_MinDurationFloor(t *testing.T) {
	s, clip := clipFixture(t)

	require.NoError(t, s.ResizeClip(clip.ID, EdgeRight, clip.TimelineStart+10))
	got := s.Clip(clip.ID)
	assert.Equal(t, model.MinClipDuration, got.Duration)
	assert.EqualValues(t, got.SourceStart+got.Duration, got.SourceEnd)
}

func TestResizeLeft_ExtendClampedBySourceStart(t *testing.T) {
	s, clip := clipFixture(t)

	// Extending left by more than the 1000ms of source headroom stops at
	// source start 0.
	require.NoError(t, s.ResizeClip(clip.ID, EdgeLeft, clip.TimelineStart-5000))
	got := s.Clip(clip.ID)
	assert.EqualValues(t, 1000, got.TimelineStart)
	assert.EqualValues(t, 5000, got.Duration)
	assert.EqualValues(t, 0, got.SourceStart)
	assert.EqualValues(t, 5000, got.SourceEnd)
}

func TestResizeLeft_ShrinkAdvancesSourceStart(t *testing.T) {
	s, clip := clipFixture(t)

	require.NoError(t, s.ResizeClip(clip.ID, EdgeLeft, clip.TimelineStart+1500))
	got := s.Clip(clip.ID)
	assert.EqualValues(t, 3500, got.TimelineStart)
	assert.EqualValues(t, 2500, got.Duration)
	assert.EqualValues(t, 2500, got.SourceStart)
	assert.EqualValues(t, 5000, got.SourceEnd)
}

func TestResizeLeft_NeverCrossesTimelineZero(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	img := addImageMedia(t, s)
	clip, err := s.AddClip(img.ID, track.ID, 500)
	require.NoError(t, err)

	require.NoError(t, s.ResizeClip(clip.ID, EdgeLeft, -10000))
	got := s.Clip(clip.ID)
	assert.EqualValues(t, 0, got.TimelineStart)
	assert.EqualValues(t, 5500, got.Duration)
}

func TestResize_UnboundedSourceHasNoRightClamp(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	img := addImageMedia(t, s)
	clip, err := s.AddClip(img.ID, track.ID, 0)
	require.NoError(t, err)

	// An image clip stretches arbitrarily far.
	require.NoError(t, s.ResizeClip(clip.ID, EdgeRight, 120000))
	assert.EqualValues(t, 120000, s.Clip(clip.ID).Duration)
}

func TestResize_CollisionRejectsWholeEdit(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 10000)

	a, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)
	require.NoError(t, s.ResizeClip(a.ID, EdgeRight, 3000))
	_, err = s.AddClip(mf.ID, track.ID, 4000)
	require.NoError(t, err)

	before := s.Clip(a.ID)
	err = s.ResizeClip(a.ID, EdgeRight, 5000)
	require.ErrorIs(t, err, ErrCollision)
	assert.Equal(t, before, s.Clip(a.ID))
}

func TestResize_LockedTrackRejected(t *testing.T) {
	s, clip := clipFixture(t)
	require.NoError(t, s.SetTrackLocked(clip.TrackID, true))

	err := s.ResizeClip(clip.ID, EdgeRight, clip.End()+1000)
	assert.ErrorIs(t, err, ErrTrackLocked)
}

func TestSplitClip_CarriesSourceRange(t *testing.T) {
	s, clip := clipFixture(t)

	// clip: timeline [2000, 6000), source [1000, 5000)
	right, err := s.SplitClip(clip.ID, 3500)
	require.NoError(t, err)

	left := s.Clip(clip.ID)
	assert.EqualValues(t, 2000, left.TimelineStart)
	assert.EqualValues(t, 1500, left.Duration)
	assert.EqualValues(t, 1000, left.SourceStart)
	assert.EqualValues(t, 2500, left.SourceEnd)

	assert.EqualValues(t, 3500, right.TimelineStart)
	assert.EqualValues(t, 2500, right.Duration)
	assert.EqualValues(t, 2500, right.SourceStart)
	assert.EqualValues(t, 5000, right.SourceEnd)

	// The two halves tile the original span exactly.
	assert.Equal(t, left.End(), right.TimelineStart)
	assert.EqualValues(t, 6000, right.End())
}

func TestSplitClip_RejectsSliversAndBadCuts(t *testing.T) {
	s, clip := clipFixture(t)

	_, err := s.SplitClip(clip.ID, clip.TimelineStart+50)
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	_, err = s.SplitClip(clip.ID, clip.End()-50)
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	_, err = s.SplitClip(clip.ID, clip.TimelineStart)
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	_, err = s.SplitClip("missing", 3000)
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestSplitClip_TextKeepsStyling(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeText)
	clip, err := s.AddTextClip(track.ID, 0, "lower third")
	require.NoError(t, err)

	right, err := s.SplitClip(clip.ID, 2000)
	require.NoError(t, err)
	assert.Equal(t, "lower third", right.Text)
	assert.Equal(t, 48, right.FontSize)
	assert.EqualValues(t, 3000, right.Duration)
	assert.EqualValues(t, 2000, s.Clip(clip.ID).Duration)
}
