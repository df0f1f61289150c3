package timeline

import "math"

// BaseScale is the pixel width of one millisecond at zoom 1.0.
const BaseScale = 0.1

const (
	// targetMarkerSpacingPx is the minimum on-screen distance between ruler
	// markers before the next larger interval is chosen.
	targetMarkerSpacingPx = 80.0

	// snapThresholdPx is how close (in pixels) a dragged time must be to a
	// marker for it to snap.
	snapThresholdPx = 10.0
)

// markerIntervals is the ascending ladder of ruler marker intervals, in ms.
var markerIntervals = [...]int64{
	100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 300000, 600000,
}

// PixelsPerMs returns the time-to-pixel scale for a zoom factor.
func PixelsPerMs(zoom float64) float64 {
	return BaseScale * zoom
}

// TimeToPixels converts a timeline time to a pixel offset.
func TimeToPixels(timeMs int64, pixelsPerMs float64) float64 {
	return float64(timeMs) * pixelsPerMs
}

// PixelsToTime converts a pixel offset to a timeline time.
func PixelsToTime(px, pixelsPerMs float64) int64 {
	if pixelsPerMs <= 0 {
		return 0
	}
	return int64(math.Round(px / pixelsPerMs))
}

// MarkerInterval picks the smallest ladder interval whose on-screen width
// is at least the target marker spacing; the largest interval is used when
// none qualifies.
func MarkerInterval(pixelsPerMs float64) int64 {
	for _, interval := range markerIntervals {
		if float64(interval)*pixelsPerMs >= targetMarkerSpacingPx {
			return interval
		}
	}
	return markerIntervals[len(markerIntervals)-1]
}

// SnapToMarker quantizes a dragged time to the nearest ruler marker when it
// lies within the pixel snap threshold. The returned bool reports whether
// snapping happened; otherwise the input is returned unchanged. Called on
// every pointer movement during a drag, so it allocates nothing.
func SnapToMarker(timeMs int64, pixelsPerMs float64) (int64, bool) {
	if pixelsPerMs <= 0 {
		return timeMs, false
	}
	interval := MarkerInterval(pixelsPerMs)
	nearest := int64(math.Round(float64(timeMs)/float64(interval))) * interval
	thresholdMs := snapThresholdPx / pixelsPerMs

	diff := float64(timeMs - nearest)
	if math.Abs(diff) <= thresholdMs {
		return nearest, true
	}
	return timeMs, false
}
