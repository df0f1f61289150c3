package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip_HalfOpenInterval(t *testing.T) {
	c := &Clip{TimelineStart: 1000, Duration: 2000}

	assert.EqualValues(t, 3000, c.End())
	assert.False(t, c.ActiveAt(999))
	assert.True(t, c.ActiveAt(1000))
	assert.True(t, c.ActiveAt(2999))
	assert.False(t, c.ActiveAt(3000))
}

func TestClip_SourceOffsetAt(t *testing.T) {
	c := &Clip{TimelineStart: 1000, Duration: 4000, SourceStart: 900}
	assert.EqualValues(t, 900, c.SourceOffsetAt(1000))
	assert.EqualValues(t, 1400, c.SourceOffsetAt(1500))
}

func TestClipKind_TrackTypeMapping(t *testing.T) {
	assert.Equal(t, TrackTypeVideo, ClipKindVideo.TrackType())
	assert.Equal(t, TrackTypeAudio, ClipKindAudio.TrackType())
	assert.Equal(t, TrackTypeText, ClipKindText.TrackType())
	assert.False(t, ClipKind("sticker").Valid())
}

func TestMediaType_ClipKind(t *testing.T) {
	assert.Equal(t, ClipKindVideo, MediaTypeVideo.ClipKind())
	assert.Equal(t, ClipKindVideo, MediaTypeImage.ClipKind(), "images place as video clips")
	assert.Equal(t, ClipKindAudio, MediaTypeAudio.ClipKind())
	assert.Empty(t, MediaType("document").ClipKind())
}

func TestMediaFile_Bounded(t *testing.T) {
	assert.True(t, (&MediaFile{Duration: 5000}).Bounded())
	assert.False(t, (&MediaFile{Duration: UnboundedDuration}).Bounded())
}
