package model

// MediaType identifies an imported asset kind.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeImage MediaType = "image"
)

// ClipKind returns the clip kind produced when this media is placed on the
// timeline. Image media is placed as a video clip.
func (t MediaType) ClipKind() ClipKind {
	switch t {
	case MediaTypeVideo, MediaTypeImage:
		return ClipKindVideo
	case MediaTypeAudio:
		return ClipKindAudio
	}
	return ""
}

// UnboundedDuration marks a source with no intrinsic length (images).
const UnboundedDuration int64 = -1

// MediaFile describes an imported asset available for placement as clips.
// It is owned by the timeline store and referenced by clips via SourceID.
type MediaFile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     MediaType `json:"type"`
	MimeType string    `json:"mimeType"`
	Size     int64     `json:"size"`
	Duration int64     `json:"duration"` // ms, UnboundedDuration for images
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	URL      string    `json:"url"`
}

// Bounded reports whether the source has an intrinsic duration that clips
// must stay within.
func (m *MediaFile) Bounded() bool {
	return m.Duration != UnboundedDuration
}
