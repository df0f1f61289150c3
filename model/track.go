package model

// TrackType identifies what kind of clips a track may hold.
type TrackType string

const (
	TrackTypeVideo TrackType = "video"
	TrackTypeAudio TrackType = "audio"
	TrackTypeText  TrackType = "text"
)

// TypePriority returns the sort priority of a track type. Video tracks sort
// before audio tracks, which sort before text tracks.
func (t TrackType) TypePriority() int {
	switch t {
	case TrackTypeVideo:
		return 0
	case TrackTypeAudio:
		return 1
	case TrackTypeText:
		return 2
	}
	return 3
}

// Valid reports whether t is one of the known track types.
func (t TrackType) Valid() bool {
	switch t {
	case TrackTypeVideo, TrackTypeAudio, TrackTypeText:
		return true
	}
	return false
}

// Track is an ordered lane holding same-typed clips. Order defines the
// compositor z-depth and the vertical position in the timeline UI.
type Track struct {
	ID     string    `json:"id"`
	Type   TrackType `json:"type"`
	Name   string    `json:"name"`
	Order  int       `json:"order"`
	Muted  bool      `json:"muted"`
	Locked bool      `json:"locked"`
}
