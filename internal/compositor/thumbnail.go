package compositor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const placeholderCell = 8

var (
	placeholderLight = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	placeholderDark  = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
)

// RenderThumbnail scales img down uniformly to fit a maxWidth×maxHeight box.
// It never upscales. A zero-area input yields a placeholder of the box size.
func RenderThumbnail(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	if maxWidth <= 0 || maxHeight <= 0 {
		return &image.NRGBA{}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Placeholder(maxWidth, maxHeight)
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	// Fit truncates the short side; an extreme aspect ratio can collapse it.
	if tb := thumb.Bounds(); tb.Dx() <= 0 || tb.Dy() <= 0 {
		return Placeholder(maxWidth, maxHeight)
	}

	return thumb
}

// Placeholder draws a checkerboard of the requested size.
func Placeholder(width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return &image.NRGBA{}
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(placeholderLight)
	dc.Clear()

	dc.SetColor(placeholderDark)
	for y := 0; y < height; y += placeholderCell {
		for x := 0; x < width; x += placeholderCell {
			if (x/placeholderCell+y/placeholderCell)%2 == 1 {
				dc.DrawRectangle(float64(x), float64(y), placeholderCell, placeholderCell)
			}
		}
	}
	dc.Fill()

	return imaging.Clone(dc.Image())
}
