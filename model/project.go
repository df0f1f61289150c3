package model

import "time"

// Zoom bounds and step for the timeline view scale factor.
const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	ZoomStep = 0.25
)

// Resolution is the output surface size of a project.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Project is the persisted form of one editing session: metadata plus the
// full timeline graph. The in-memory store is replaced wholesale when a
// project is loaded.
type Project struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Resolution Resolution   `json:"resolution"`
	FrameRate  int          `json:"frameRate"`
	Duration   int64        `json:"duration"` // ms, derived from clips
	Tracks     []*Track     `json:"tracks"`
	Clips      []*Clip      `json:"clips"`
	MediaFiles []*MediaFile `json:"mediaFiles"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ProjectSummary is the listing shape returned by the projects index.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Duration  int64     `json:"duration"`
	ClipCount int       `json:"clipCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}
