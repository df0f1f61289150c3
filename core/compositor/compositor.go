package compositor

import (
	"image"
	"image/color"
	stddraw "image/draw"
	"sort"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// FrameSource supplies decoded frames for one layer. Dimensions are zero
// until the source's metadata is known; Frame is nil until a frame is
// decodable.
type FrameSource interface {
	Frame() image.Image
	Dimensions() (w, h int)
}

// Layer is one active visual clip bound to its frame source. Order is the
// owning track's order: layers are drawn ascending, so a higher order ends
// up frontmost. This stacking is authoritative and must match what a
// batch export reproduces from the same project data.
type Layer struct {
	ClipID  string
	Order   int
	Source  FrameSource
	Opacity float64 // 0..1, 1 = opaque
	Visible bool
}

// Compositor rasterizes the visible layer set onto one output surface.
// Composition is a pure function of (layers, output size); the compositor
// only caches the last layer set so a resize can re-render immediately
// without replaying time.
type Compositor struct {
	mu         sync.Mutex
	out        *image.RGBA
	width      int
	height     int
	lastLayers []Layer
}

// NewCompositor creates a compositor with the given output size.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{
		out:    image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
}

// Size returns the current output dimensions.
func (c *Compositor) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Resize changes the output surface and immediately re-renders the last
// layer set at the new size.
func (c *Compositor) Resize(width, height int) {
	c.mu.Lock()
	c.width = width
	c.height = height
	c.out = image.NewRGBA(image.Rect(0, 0, width, height))
	layers := c.lastLayers
	c.mu.Unlock()
	c.Compose(layers)
}

// Compose draws the layer set back to front and returns the output frame.
// Invisible layers are excluded from the pass entirely; layers whose
// source has no frame or zero dimensions yet are skipped without error.
// The returned image is owned by the compositor and valid until the next
// Compose or Resize.
func (c *Compositor) Compose(layers []Layer) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	// Clear to opaque black.
	stddraw.Draw(c.out, c.out.Bounds(), image.NewUniform(color.Black), image.Point{}, stddraw.Src)

	for _, layer := range ordered {
		if !layer.Visible || layer.Source == nil {
			continue
		}
		srcW, srcH := layer.Source.Dimensions()
		frame := layer.Source.Frame()
		if frame == nil || srcW <= 0 || srcH <= 0 {
			continue
		}
		dst := ContainFit(srcW, srcH, c.width, c.height)
		if dst.Empty() {
			continue
		}

		if layer.Opacity >= 1 {
			xdraw.ApproxBiLinear.Scale(c.out, dst, frame, frame.Bounds(), xdraw.Over, nil)
			continue
		}
		if layer.Opacity <= 0 {
			continue
		}

		// Scale into a scratch image, then blend it with a uniform alpha mask.
		tmp := image.NewRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
		xdraw.ApproxBiLinear.Scale(tmp, tmp.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
		mask := image.NewUniform(color.Alpha{A: uint8(layer.Opacity*255 + 0.5)})
		stddraw.DrawMask(c.out, dst, tmp, image.Point{}, mask, image.Point{}, stddraw.Over)
	}

	c.lastLayers = ordered
	return c.out
}

// Output returns the most recently composed frame.
func (c *Compositor) Output() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out
}

// ContainFit scales source dimensions uniformly to fit inside the output
// while preserving aspect ratio, and centers the result.
func ContainFit(srcW, srcH, outW, outH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || outW <= 0 || outH <= 0 {
		return image.Rectangle{}
	}
	scaleW := float64(outW) / float64(srcW)
	scaleH := float64(outH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(srcW)*scale + 0.5)
	h := int(float64(srcH)*scale + 0.5)
	x := (outW - w) / 2
	y := (outH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
