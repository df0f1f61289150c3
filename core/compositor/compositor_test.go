package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidSource serves a uniform-color frame of fixed dimensions.
type solidSource struct {
	c    color.RGBA
	w, h int
}

func newSolidSource(c color.RGBA, w, h int) *solidSource {
	return &solidSource{c: c, w: w, h: h}
}

func (s *solidSource) Frame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	draw.Draw(img, img.Bounds(), image.NewUniform(s.c), image.Point{}, draw.Src)
	return img
}

func (s *solidSource) Dimensions() (int, int) { return s.w, s.h }

// pendingSource mimics a source whose decoder has no metadata yet.
type pendingSource struct{}

func (pendingSource) Frame() image.Image     { return nil }
func (pendingSource) Dimensions() (int, int) { return 0, 0 }

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func centerPixel(t *testing.T, img *image.RGBA) color.RGBA {
	t.Helper()
	b := img.Bounds()
	return img.RGBAAt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
}

func TestContainFit(t *testing.T) {
	// Same aspect ratio fills the output exactly.
	assert.Equal(t, image.Rect(0, 0, 1280, 720), ContainFit(1920, 1080, 1280, 720))

	// Portrait source pillarboxes: height-bound, centered horizontally.
	r := ContainFit(1080, 1920, 1280, 720)
	assert.Equal(t, 720, r.Dy())
	assert.Equal(t, 405, r.Dx())
	assert.Equal(t, (1280-405)/2, r.Min.X)
	assert.Equal(t, 0, r.Min.Y)

	// Wide source letterboxes: width-bound, centered vertically.
	r = ContainFit(1920, 480, 1280, 720)
	assert.Equal(t, 1280, r.Dx())
	assert.Equal(t, 320, r.Dy())
	assert.Equal(t, 0, r.Min.X)
	assert.Equal(t, (720-320)/2, r.Min.Y)

	assert.True(t, ContainFit(0, 1080, 1280, 720).Empty())
	assert.True(t, ContainFit(1920, 1080, 0, 0).Empty())
}

func TestCompose_EmptyLayerSetIsBlack(t *testing.T) {
	c := NewCompositor(64, 36)
	out := c.Compose(nil)
	assert.Equal(t, color.RGBA{A: 255}, centerPixel(t, out))
}

func TestCompose_HigherOrderDrawsOnTop(t *testing.T) {
	c := NewCompositor(64, 36)
	layers := []Layer{
		// Deliberately passed front-first; Compose must sort by order.
		{ClipID: "front", Order: 1, Source: newSolidSource(blue, 64, 36), Opacity: 1, Visible: true},
		{ClipID: "back", Order: 0, Source: newSolidSource(red, 64, 36), Opacity: 1, Visible: true},
	}
	out := c.Compose(layers)
	assert.Equal(t, blue, centerPixel(t, out))
}

func TestCompose_InvisibleLayerSkipped(t *testing.T) {
	c := NewCompositor(64, 36)
	layers := []Layer{
		{ClipID: "back", Order: 0, Source: newSolidSource(red, 64, 36), Opacity: 1, Visible: true},
		{ClipID: "front", Order: 1, Source: newSolidSource(blue, 64, 36), Opacity: 1, Visible: false},
	}
	out := c.Compose(layers)
	assert.Equal(t, red, centerPixel(t, out))
}

func TestCompose_UnreadySourceSkippedWithoutError(t *testing.T) {
	c := NewCompositor(64, 36)
	layers := []Layer{
		{ClipID: "pending", Order: 1, Source: pendingSource{}, Opacity: 1, Visible: true},
		{ClipID: "nil-src", Order: 2, Opacity: 1, Visible: true},
		{ClipID: "ok", Order: 0, Source: newSolidSource(red, 64, 36), Opacity: 1, Visible: true},
	}
	out := c.Compose(layers)
	assert.Equal(t, red, centerPixel(t, out))
}

func TestCompose_OpacityBlendsTowardBackground(t *testing.T) {
	c := NewCompositor(64, 36)
	layers := []Layer{
		{ClipID: "half", Order: 0, Source: newSolidSource(red, 64, 36), Opacity: 0.5, Visible: true},
	}
	out := c.Compose(layers)

	px := centerPixel(t, out)
	// Half red over black: the red channel lands near 128.
	assert.InDelta(t, 128, float64(px.R), 3)
	assert.Zero(t, px.B)
	assert.EqualValues(t, 255, px.A)
}

func TestCompose_ZeroOpacityInvisible(t *testing.T) {
	c := NewCompositor(64, 36)
	layers := []Layer{
		{ClipID: "ghost", Order: 0, Source: newSolidSource(red, 64, 36), Opacity: 0, Visible: true},
	}
	out := c.Compose(layers)
	assert.Equal(t, color.RGBA{A: 255}, centerPixel(t, out))
}

func TestCompose_AspectRatioPreserved(t *testing.T) {
	c := NewCompositor(64, 64)
	layers := []Layer{
		// A 2:1 source inside a square output leaves letterbox bars.
		{ClipID: "wide", Order: 0, Source: newSolidSource(red, 128, 64), Opacity: 1, Visible: true},
	}
	out := c.Compose(layers)

	assert.Equal(t, red, out.RGBAAt(32, 32))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(32, 4), "top bar stays black")
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(32, 60), "bottom bar stays black")
}

func TestResize_ReRendersLastLayers(t *testing.T) {
	c := NewCompositor(64, 36)
	layers := []Layer{
		{ClipID: "a", Order: 0, Source: newSolidSource(red, 64, 36), Opacity: 1, Visible: true},
	}
	c.Compose(layers)

	c.Resize(128, 72)
	w, h := c.Size()
	require.Equal(t, 128, w)
	require.Equal(t, 72, h)

	out := c.Output()
	assert.Equal(t, image.Rect(0, 0, 128, 72), out.Bounds())
	assert.Equal(t, red, centerPixel(t, out))
}
