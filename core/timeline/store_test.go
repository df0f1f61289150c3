package timeline

import (
	"testing"

	"FrameLoom/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(TrackCaps{})
}

func addVideoMedia(t *testing.T, s *Store, durationMs int64) *model.MediaFile {
	t.Helper()
	mf, err := s.AddMediaFile(&model.MediaFile{
		Name:     "clip.mp4",
		Type:     model.MediaTypeVideo,
		Duration: durationMs,
	})
	require.NoError(t, err)
	return mf
}

func addImageMedia(t *testing.T, s *Store) *model.MediaFile {
	t.Helper()
	mf, err := s.AddMediaFile(&model.MediaFile{
		Name:     "still.png",
		Type:     model.MediaTypeImage,
		Duration: model.UnboundedDuration,
	})
	require.NoError(t, err)
	return mf
}

func TestAddTrack_NamesAndTypeOrdering(t *testing.T) {
	s := newTestStore(t)

	audio, err := s.AddTrack(model.TrackTypeAudio)
	require.NoError(t, err)
	video, err := s.AddTrack(model.TrackTypeVideo)
	require.NoError(t, err)
	text, err := s.AddTrack(model.TrackTypeText)
	require.NoError(t, err)
	video2, err := s.AddTrack(model.TrackTypeVideo)
	require.NoError(t, err)

	assert.Equal(t, "Audio 1", audio.Name)
	assert.Equal(t, "Video 1", video.Name)
	assert.Equal(t, "Text 1", text.Name)
	assert.Equal(t, "Video 2", video2.Name)

	// Orders regroup by type: video tracks first, then audio, then text.
	tracks := s.Tracks()
	require.Len(t, tracks, 4)
	assert.Equal(t, model.TrackTypeVideo, tracks[0].Type)
	assert.Equal(t, model.TrackTypeVideo, tracks[1].Type)
	assert.Equal(t, model.TrackTypeAudio, tracks[2].Type)
	assert.Equal(t, model.TrackTypeText, tracks[3].Type)
	for i, tr := range tracks {
		assert.Equal(t, i, tr.Order)
	}
	// Relative order within a type is preserved.
	assert.Equal(t, video.ID, tracks[0].ID)
	assert.Equal(t, video2.ID, tracks[1].ID)
}

func TestAddTrack_CapReached(t *testing.T) {
	s := NewStore(TrackCaps{Video: 1})

	_, err := s.AddTrack(model.TrackTypeVideo)
	require.NoError(t, err)

	_, err = s.AddTrack(model.TrackTypeVideo)
	assert.ErrorIs(t, err, ErrTrackCapReached)

	// Other types are not capped by the video cap.
	_, err = s.AddTrack(model.TrackTypeAudio)
	assert.NoError(t, err)
}

func TestAddClip_AdjacencyIsNotCollision(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 5000)

	first, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, first.Duration)

	// Touching end-to-start is legal: intervals are half-open.
	_, err = s.AddClip(mf.ID, track.ID, 5000)
	assert.NoError(t, err)

	// One ms of overlap is not.
	_, err = s.AddClip(mf.ID, track.ID, 4999)
	assert.ErrorIs(t, err, ErrCollision)
}

func TestAddClip_RejectionLeavesStoreUnchanged(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 5000)

	_, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)
	before := s.Snapshot()

	fired := false
	s.OnChange(func() { fired = true })

	_, err = s.AddClip(mf.ID, track.ID, 2000)
	require.ErrorIs(t, err, ErrCollision)

	assert.False(t, fired, "rejected operation must not notify")
	assert.Equal(t, before, s.Snapshot())
}

func TestAddClip_TrackTypeResolution(t *testing.T) {
	s := newTestStore(t)
	videoTrack, _ := s.AddTrack(model.TrackTypeVideo)
	audioTrack, _ := s.AddTrack(model.TrackTypeAudio)

	video := addVideoMedia(t, s, 3000)
	img := addImageMedia(t, s)
	audio, err := s.AddMediaFile(&model.MediaFile{Type: model.MediaTypeAudio, Duration: 8000})
	require.NoError(t, err)

	// Audio media on a video track is a mismatch, and vice versa.
	_, err = s.AddClip(audio.ID, videoTrack.ID, 0)
	assert.ErrorIs(t, err, ErrTrackTypeMismatch)
	_, err = s.AddClip(video.ID, audioTrack.ID, 0)
	assert.ErrorIs(t, err, ErrTrackTypeMismatch)

	// Image media lands on video tracks with the default placement length.
	clip, err := s.AddClip(img.ID, videoTrack.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.ClipKindVideo, clip.Kind)
	assert.Equal(t, model.DefaultImageDuration, clip.Duration)

	ac, err := s.AddClip(audio.ID, audioTrack.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.ClipKindAudio, ac.Kind)
	assert.EqualValues(t, 1, ac.Volume)
}

func TestAddClip_RejectsMediaShorterThanMinimum(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	short := addVideoMedia(t, s, model.MinClipDuration-50)

	_, err := s.AddClip(short.ID, track.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidPlacement)
	assert.Empty(t, s.Clips())
	assert.EqualValues(t, 0, s.Duration())

	// Exactly the minimum is placeable.
	exact := addVideoMedia(t, s, model.MinClipDuration)
	clip, err := s.AddClip(exact.ID, track.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MinClipDuration, clip.Duration)
}

func TestAddClip_NegativeStartRejected(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)

	_, err := s.AddClip(mf.ID, track.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidPlacement)
}

func TestAddClip_LockedTrack(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)
	require.NoError(t, s.SetTrackLocked(track.ID, true))

	_, err := s.AddClip(mf.ID, track.ID, 0)
	assert.ErrorIs(t, err, ErrTrackLocked)

	require.NoError(t, s.SetTrackLocked(track.ID, false))
	_, err = s.AddClip(mf.ID, track.ID, 0)
	assert.NoError(t, err)
}

func TestDuration_DerivedFromFarthestClipEnd(t *testing.T) {
	s := newTestStore(t)
	v, _ := s.AddTrack(model.TrackTypeVideo)
	a, _ := s.AddTrack(model.TrackTypeAudio)
	vm := addVideoMedia(t, s, 4000)
	am, err := s.AddMediaFile(&model.MediaFile{Type: model.MediaTypeAudio, Duration: 10000})
	require.NoError(t, err)

	assert.EqualValues(t, 0, s.Duration())

	_, err = s.AddClip(vm.ID, v.ID, 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, s.Duration())

	long, err := s.AddClip(am.ID, a.ID, 2000)
	require.NoError(t, err)
	assert.EqualValues(t, 12000, s.Duration())

	require.NoError(t, s.RemoveClip(long.ID))
	assert.EqualValues(t, 5000, s.Duration())
}

func TestRemoveTrack_CascadesAndReportsClips(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	empty, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)

	clip, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)
	require.NoError(t, s.SelectClip(clip.ID))

	hadClips, err := s.RemoveTrack(empty.ID)
	require.NoError(t, err)
	assert.False(t, hadClips)

	hadClips, err = s.RemoveTrack(track.ID)
	require.NoError(t, err)
	assert.True(t, hadClips)
	assert.Nil(t, s.Clip(clip.ID))
	assert.Empty(t, s.SelectedClipID())
	assert.EqualValues(t, 0, s.Duration())

	_, err = s.RemoveTrack(track.ID)
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestMoveClip_AtomicRejection(t *testing.T) {
	s := newTestStore(t)
	t1, _ := s.AddTrack(model.TrackTypeVideo)
	t2, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)

	a, err := s.AddClip(mf.ID, t1.ID, 0)
	require.NoError(t, err)
	_, err = s.AddClip(mf.ID, t2.ID, 1000)
	require.NoError(t, err)

	// Target overlaps the clip on t2: nothing about a may change.
	err = s.MoveClip(a.ID, t2.ID, 2000)
	require.ErrorIs(t, err, ErrCollision)
	got := s.Clip(a.ID)
	assert.Equal(t, t1.ID, got.TrackID)
	assert.EqualValues(t, 0, got.TimelineStart)

	require.NoError(t, s.MoveClip(a.ID, t2.ID, 5000))
	got = s.Clip(a.ID)
	assert.Equal(t, t2.ID, got.TrackID)
	assert.EqualValues(t, 5000, got.TimelineStart)
}

func TestRemoveMediaFile_CascadesClips(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)
	keep := addVideoMedia(t, s, 3000)

	doomed, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)
	kept, err := s.AddClip(keep.ID, track.ID, 4000)
	require.NoError(t, err)
	require.NoError(t, s.SelectClip(doomed.ID))

	require.NoError(t, s.RemoveMediaFile(mf.ID))
	assert.Nil(t, s.MediaFile(mf.ID))
	assert.Nil(t, s.Clip(doomed.ID))
	assert.NotNil(t, s.Clip(kept.ID))
	assert.Empty(t, s.SelectedClipID())
	assert.EqualValues(t, 7000, s.Duration())
}

func TestSelectClip(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)
	clip, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SelectClip("nope"), ErrClipNotFound)
	require.NoError(t, s.SelectClip(clip.ID))
	assert.Equal(t, clip.ID, s.SelectedClipID())
	require.NoError(t, s.SelectClip(""))
	assert.Empty(t, s.SelectedClipID())
}

func TestSetCurrentTime_ClampsAtZero(t *testing.T) {
	s := newTestStore(t)
	s.SetCurrentTime(-50)
	assert.EqualValues(t, 0, s.CurrentTime())
	s.SetCurrentTime(1234)
	assert.EqualValues(t, 1234, s.CurrentTime())
}

func TestZoom_StepAndClamp(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 1.0, s.Zoom())

	s.ZoomIn()
	assert.InDelta(t, 1.25, s.Zoom(), 1e-9)

	s.SetZoom(99)
	assert.Equal(t, model.MaxZoom, s.Zoom())
	s.ZoomIn()
	assert.Equal(t, model.MaxZoom, s.Zoom())

	s.SetZoom(-1)
	assert.Equal(t, model.MinZoom, s.Zoom())
	s.ZoomOut()
	assert.Equal(t, model.MinZoom, s.Zoom())
}

func TestAddTextClip(t *testing.T) {
	s := newTestStore(t)
	textTrack, _ := s.AddTrack(model.TrackTypeText)
	videoTrack, _ := s.AddTrack(model.TrackTypeVideo)

	_, err := s.AddTextClip(videoTrack.ID, 0, "title")
	assert.ErrorIs(t, err, ErrTrackTypeMismatch)

	clip, err := s.AddTextClip(textTrack.ID, 1000, "title")
	require.NoError(t, err)
	assert.Equal(t, model.ClipKindText, clip.Kind)
	assert.Equal(t, "title", clip.Text)
	assert.EqualValues(t, 5000, clip.Duration)
	assert.Equal(t, 48, clip.FontSize)
	assert.Equal(t, "#ffffff", clip.FontColor)

	_, err = s.AddTextClip(textTrack.ID, 3000, "overlapping")
	assert.ErrorIs(t, err, ErrCollision)
}

func TestLoad_RecomputesDerivedState(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)
	_, err := s.AddClip(mf.ID, track.ID, 2000)
	require.NoError(t, err)
	s.SetCurrentTime(4000)

	snap := s.Snapshot()
	snap.Duration = 999999 // a stale persisted duration must not be trusted

	fresh := newTestStore(t)
	fresh.Load(snap)

	assert.EqualValues(t, 5000, fresh.Duration())
	assert.EqualValues(t, 0, fresh.CurrentTime())
	assert.Len(t, fresh.Clips(), 1)
	assert.Len(t, fresh.Tracks(), 1)
	assert.NotNil(t, fresh.MediaFile(mf.ID))
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)
	_, err := s.AddClip(mf.ID, track.ID, 0)
	require.NoError(t, err)

	s.Reset()
	assert.Empty(t, s.Tracks())
	assert.Empty(t, s.Clips())
	assert.Empty(t, s.MediaFiles())
	assert.EqualValues(t, 0, s.Duration())
	assert.Equal(t, 1.0, s.Zoom())
}

func TestActiveClipsAt_HalfOpenBoundaries(t *testing.T) {
	s := newTestStore(t)
	track, _ := s.AddTrack(model.TrackTypeVideo)
	mf := addVideoMedia(t, s, 3000)
	clip, err := s.AddClip(mf.ID, track.ID, 1000)
	require.NoError(t, err)

	assert.Empty(t, s.ActiveClipsAt(999))
	require.Len(t, s.ActiveClipsAt(1000), 1)
	assert.Equal(t, clip.ID, s.ActiveClipsAt(1000)[0].ID)
	assert.Len(t, s.ActiveClipsAt(3999), 1)
	assert.Empty(t, s.ActiveClipsAt(4000), "clip end is exclusive")
}
