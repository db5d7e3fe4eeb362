// Package compositor renders the effective bitmap of a master/variant pair
// and its thumbnails. All functions are pure: inputs are never mutated.
package compositor

import (
	"image"
	"io"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"

	"github.com/aliskhannn/media-editor/internal/model"
)

// RenderLayer renders one stage: crop src (or keep it whole when the crop is
// absent or degenerate), then apply filters.
func RenderLayer(src image.Image, crop *model.CropRectangle, filters *model.FilterState) *image.NRGBA {
	out := cropOrFull(src, crop)

	if filters == nil || filters.IsNeutral() {
		return out
	}

	return ApplyFilters(out, *filters)
}

// RenderEffectiveBitmap composes the master stage over the physical bitmap and,
// when a variant crop or filter is given, the variant stage over that result.
// Variant coordinates are relative to the master stage's pixel space.
func RenderEffectiveBitmap(
	physical image.Image,
	masterCrop *model.CropRectangle,
	masterFilters *model.FilterState,
	variantCrop *model.CropRectangle,
	variantFilters *model.FilterState,
) *image.NRGBA {
	stage1 := RenderLayer(physical, masterCrop, masterFilters)

	if variantCrop == nil && variantFilters == nil {
		return stage1
	}

	return RenderLayer(stage1, variantCrop, variantFilters)
}

// RenderVirtualMasterBitmap bakes a virtual master's own defaults into a
// single source image.
func RenderVirtualMasterBitmap(physical image.Image, defaultCrop *model.CropRectangle, defaultFilters *model.FilterState) *image.NRGBA {
	return RenderLayer(physical, defaultCrop, defaultFilters)
}

// ApplyFilters applies brightness, contrast, saturate and hue-rotate in that
// order with CSS filter semantics. Neutral sliders are skipped.
func ApplyFilters(src image.Image, f model.FilterState) *image.NRGBA {
	img := src

	if f.Brightness != model.NeutralPercent {
		img = adjust.Brightness(img, percentChange(f.Brightness))
	}
	if f.Contrast != model.NeutralPercent {
		img = adjust.Contrast(img, percentChange(f.Contrast))
	}
	if f.Saturation != model.NeutralPercent {
		img = adjust.Saturation(img, percentChange(f.Saturation))
	}
	if hue := int(f.Hue) % 360; hue != model.NeutralHue {
		img = adjust.Hue(img, hue)
	}

	return imaging.Clone(img)
}

// percentChange maps a CSS percentage (100 = identity) to bild's normalized change.
func percentChange(v float64) float64 {
	return v/model.NeutralPercent - 1
}

// cropOrFull crops src to r, falling back to the whole of src for a nil,
// non-positive or fully out-of-bounds rectangle.
func cropOrFull(src image.Image, r *model.CropRectangle) *image.NRGBA {
	if r == nil || !r.Valid() {
		return imaging.Clone(src)
	}

	b := src.Bounds()
	c := r.Clamp(b.Dx(), b.Dy()).Round()
	if !c.Valid() {
		return imaging.Clone(src)
	}

	rect := image.Rect(int(c.X), int(c.Y), int(c.X+c.Width), int(c.Y+c.Height)).Add(b.Min)

	return imaging.Crop(src, rect)
}

// CenteredAspectCrop returns the largest crop box with the given width/height
// ratio centered in a w×h canvas.
func CenteredAspectCrop(w, h int, ratio float64) model.CropRectangle {
	if w <= 0 || h <= 0 || ratio <= 0 {
		return model.FullCrop(w, h)
	}

	fw, fh := float64(w), float64(h)
	cw, ch := fw, fw/ratio
	if ch > fh {
		ch = fh
		cw = fh * ratio
	}

	return model.CropRectangle{
		X:      (fw - cw) / 2,
		Y:      (fh - ch) / 2,
		Width:  cw,
		Height: ch,
	}
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format imaging.Format) error {
	return imaging.Encode(w, img, format, imaging.JPEGQuality(90))
}
