package model

// ClipKind discriminates the clip union. Consumers must switch over all
// three kinds explicitly; an unknown kind is an error, never a silent skip.
type ClipKind string

const (
	ClipKindVideo ClipKind = "video"
	ClipKindAudio ClipKind = "audio"
	ClipKindText  ClipKind = "text"
)

// Valid reports whether k is one of the known clip kinds.
func (k ClipKind) Valid() bool {
	switch k {
	case ClipKindVideo, ClipKindAudio, ClipKindText:
		return true
	}
	return false
}

// TrackType returns the track type a clip of this kind must be placed on.
func (k ClipKind) TrackType() TrackType {
	switch k {
	case ClipKindVideo:
		return TrackTypeVideo
	case ClipKindAudio:
		return TrackTypeAudio
	case ClipKindText:
		return TrackTypeText
	}
	return ""
}

const (
	// MinClipDuration is the shortest a clip may become through any edit, in ms.
	MinClipDuration int64 = 100

	// DefaultImageDuration is the placement duration for unbounded (image)
	// sources, in ms.
	DefaultImageDuration int64 = 5000
)

// Clip is a placed, time-bounded reference to a media source (or inline
// text) on one track. All times are milliseconds.
//
// Invariants maintained by the timeline store:
//   - Duration >= MinClipDuration
//   - media kinds: SourceEnd-SourceStart == Duration, and for bounded
//     sources 0 <= SourceStart and SourceEnd <= source duration
//   - no two clips on one track overlap (half-open intervals)
type Clip struct {
	ID            string   `json:"id"`
	Kind          ClipKind `json:"kind"`
	TrackID       string   `json:"trackId"`
	TimelineStart int64    `json:"timelineStart"`
	Duration      int64    `json:"duration"`

	// Media fields, meaningful for video and audio kinds only.
	SourceID    string  `json:"sourceId,omitempty"`
	SourceStart int64   `json:"sourceStart,omitempty"`
	SourceEnd   int64   `json:"sourceEnd,omitempty"`
	Volume      float64 `json:"volume,omitempty"` // 0..1, 1 when unset by the UI
	Muted       bool    `json:"muted,omitempty"`
	FadeIn      int64   `json:"fadeIn,omitempty"`  // ms of linear ramp at the clip head
	FadeOut     int64   `json:"fadeOut,omitempty"` // ms of linear ramp at the clip tail
	Opacity     float64 `json:"opacity,omitempty"` // compositor layer opacity, 0 treated as 1

	// Text fields, meaningful for the text kind only.
	Text      string  `json:"text,omitempty"`
	FontSize  int     `json:"fontSize,omitempty"`
	FontColor string  `json:"fontColor,omitempty"`
	PosX      float64 `json:"posX,omitempty"` // 0..1 relative to output width
	PosY      float64 `json:"posY,omitempty"` // 0..1 relative to output height
}

// End returns the exclusive timeline end of the clip.
func (c *Clip) End() int64 {
	return c.TimelineStart + c.Duration
}

// ActiveAt reports whether the clip's half-open interval contains t.
func (c *Clip) ActiveAt(t int64) bool {
	return t >= c.TimelineStart && t < c.TimelineStart+c.Duration
}

// SourceOffsetAt maps a timeline time inside the clip to the source decode
// position. Only meaningful for media kinds.
func (c *Clip) SourceOffsetAt(t int64) int64 {
	return c.SourceStart + (t - c.TimelineStart)
}

// Clone returns a copy of the clip. Edits are staged on clones and only
// committed once the full placement has been validated.
func (c *Clip) Clone() *Clip {
	dup := *c
	return &dup
}
