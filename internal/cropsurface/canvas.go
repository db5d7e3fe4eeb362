// Package cropsurface is an in-process pan/zoom/crop-box surface. It holds
// the image the editor hands it and the user-adjustable crop geometry.
package cropsurface

import (
	"image"
	"math"
	"sync"

	"github.com/aliskhannn/media-editor/internal/compositor"
	"github.com/aliskhannn/media-editor/internal/model"
)

const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Canvas is safe for concurrent use.
type Canvas struct {
	mu sync.RWMutex

	img    image.Image
	crop   model.CropRectangle
	zoom   float64
	pos    image.Point
	aspect float64 // 0 means unlocked
}

// New returns an empty canvas.
func New() *Canvas {
	return &Canvas{zoom: 1}
}

// Load replaces the image and resets crop to the full extent, zoom to 1,
// position to the origin and unlocks the aspect ratio.
func (c *Canvas) Load(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.img = img
	w, h := c.dimensions()
	c.crop = model.FullCrop(w, h)
	c.zoom = 1
	c.pos = image.Point{}
	c.aspect = 0
}

// Image returns the loaded image.
func (c *Canvas) Image() image.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.img
}

// Dimensions returns the pixel size of the loaded image.
func (c *Canvas) Dimensions() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.dimensions()
}

func (c *Canvas) dimensions() (int, int) {
	if c.img == nil {
		return 0, 0
	}

	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// CropBox returns the current crop rectangle in image pixels.
func (c *Canvas) CropBox() model.CropRectangle {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.crop
}

// SetCropBox moves the crop box to r, clamped into the image. A degenerate
// rectangle selects the full extent. With a locked aspect ratio the box is
// shrunk around its center to the locked ratio.
func (c *Canvas) SetCropBox(r model.CropRectangle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := c.dimensions()
	if !r.Valid() {
		r = model.FullCrop(w, h)
	}
	r = r.Clamp(w, h)
	if !r.Valid() {
		r = model.FullCrop(w, h)
	}

	if c.aspect > 0 {
		r = fitRatio(r, c.aspect)
	}

	c.crop = r
}

// ResizeCropBox resizes the crop box from its top-left corner, as a user
// dragging the bottom-right handle would. A locked aspect ratio is preserved:
// the height follows the width, and the box shrinks to stay inside the image.
func (c *Canvas) ResizeCropBox(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	w, h := c.dimensions()
	maxW := float64(w) - c.crop.X
	maxH := float64(h) - c.crop.Y

	if c.aspect > 0 {
		height = width / c.aspect
		if width > maxW {
			width = maxW
			height = width / c.aspect
		}
		if height > maxH {
			height = maxH
			width = height * c.aspect
		}
	} else {
		width = math.Min(width, maxW)
		height = math.Min(height, maxH)
	}

	c.crop.Width = width
	c.crop.Height = height
}

// Zoom returns the current zoom factor.
func (c *Canvas) Zoom() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.zoom
}

// SetZoom sets the zoom factor, bounded to [MinZoom, MaxZoom].
func (c *Canvas) SetZoom(z float64) {
	if math.IsNaN(z) || z <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.zoom = math.Min(math.Max(z, MinZoom), MaxZoom)
}

// Position returns the pan offset of the image.
func (c *Canvas) Position() image.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pos
}

// SetPosition pans the image.
func (c *Canvas) SetPosition(p image.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pos = p
}

// LockAspectRatio locks the crop box to ratio (width/height) and replaces it
// with the largest centered box of that ratio.
func (c *Canvas) LockAspectRatio(ratio float64) {
	if ratio <= 0 || math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := c.dimensions()
	c.aspect = ratio
	c.crop = compositor.CenteredAspectCrop(w, h, ratio)
}

// UnlockAspectRatio lets subsequent resizes change the ratio freely.
func (c *Canvas) UnlockAspectRatio() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.aspect = 0
}

// AspectRatio returns the locked ratio, if any.
func (c *Canvas) AspectRatio() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.aspect, c.aspect > 0
}

// fitRatio shrinks r around its center until width/height equals ratio.
func fitRatio(r model.CropRectangle, ratio float64) model.CropRectangle {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2

	w, h := r.Width, r.Width/ratio
	if h > r.Height {
		h = r.Height
		w = h * ratio
	}

	return model.CropRectangle{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}
