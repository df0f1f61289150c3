package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelsPerMs(t *testing.T) {
	assert.InDelta(t, 0.1, PixelsPerMs(1.0), 1e-9)
	assert.InDelta(t, 0.05, PixelsPerMs(0.5), 1e-9)
	assert.InDelta(t, 0.5, PixelsPerMs(5.0), 1e-9)
}

func TestTimePixelConversionRoundTrip(t *testing.T) {
	ppm := PixelsPerMs(1.0)
	for _, ms := range []int64{0, 100, 1234, 60000} {
		px := TimeToPixels(ms, ppm)
		assert.Equal(t, ms, PixelsToTime(px, ppm))
	}
	assert.EqualValues(t, 0, PixelsToTime(100, 0), "degenerate scale maps to zero")
}

func TestMarkerInterval_LadderSelection(t *testing.T) {
	// At zoom 1 (0.1 px/ms) the smallest interval spanning >= 80px is 1000ms.
	assert.EqualValues(t, 1000, MarkerInterval(PixelsPerMs(1.0)))

	// Fully zoomed in (0.5 px/ms), 250ms markers are 125px apart.
	assert.EqualValues(t, 250, MarkerInterval(PixelsPerMs(5.0)))

	// Fully zoomed out (0.01 px/ms), 10s markers give 100px spacing.
	assert.EqualValues(t, 10000, MarkerInterval(PixelsPerMs(0.1)))

	// A microscopic scale falls back to the largest interval.
	assert.EqualValues(t, 600000, MarkerInterval(0.0001))
}

func TestSnapToMarker(t *testing.T) {
	ppm := PixelsPerMs(1.0) // interval 1000ms, threshold 10px = 100ms

	got, snapped := SnapToMarker(4950, ppm)
	assert.True(t, snapped)
	assert.EqualValues(t, 5000, got)

	got, snapped = SnapToMarker(5080, ppm)
	assert.True(t, snapped)
	assert.EqualValues(t, 5000, got)

	// Beyond the threshold the input passes through untouched.
	got, snapped = SnapToMarker(5400, ppm)
	assert.False(t, snapped)
	assert.EqualValues(t, 5400, got)

	got, snapped = SnapToMarker(0, ppm)
	assert.True(t, snapped)
	assert.EqualValues(t, 0, got)
}

func TestSnapToMarker_Idempotent(t *testing.T) {
	ppm := PixelsPerMs(2.0)
	for _, ms := range []int64{0, 333, 999, 1001, 4950, 12345} {
		first, _ := SnapToMarker(ms, ppm)
		second, _ := SnapToMarker(first, ppm)
		assert.Equal(t, first, second, "snapping a snapped time must be a no-op")
	}
}

func TestSnapToMarker_DegenerateScale(t *testing.T) {
	got, snapped := SnapToMarker(1234, 0)
	assert.False(t, snapped)
	assert.EqualValues(t, 1234, got)
}
