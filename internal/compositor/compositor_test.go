package compositor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/aliskhannn/media-editor/internal/model"
)

// gradient builds an opaque test bitmap whose pixels encode their position.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 200), A: 0xff})
		}
	}
	return img
}

func samePixels(t *testing.T, name string, want, got *image.NRGBA) {
	t.Helper()

	if want.Bounds().Size() != got.Bounds().Size() {
		t.Fatalf("%s: size want=%v got=%v", name, want.Bounds().Size(), got.Bounds().Size())
	}

	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			wc := want.NRGBAAt(wb.Min.X+x, wb.Min.Y+y)
			gc := got.NRGBAAt(gb.Min.X+x, gb.Min.Y+y)
			if wc != gc {
				t.Fatalf("%s: pixel (%d,%d) want=%v got=%v", name, x, y, wc, gc)
			}
		}
	}
}

func rect(x, y, w, h float64) *model.CropRectangle {
	return &model.CropRectangle{X: x, Y: y, Width: w, Height: h}
}

func filters(b, c, s, h float64) *model.FilterState {
	return &model.FilterState{Brightness: b, Contrast: c, Saturation: s, Hue: h}
}

func TestRenderEffectiveBitmapTwoStage(t *testing.T) {
	p := gradient(120, 90)
	mc, mf := rect(10, 5, 80, 60), filters(110, 90, 120, 30)
	vc, vf := rect(5, 5, 40, 30), filters(130, 100, 80, 0)

	got := RenderEffectiveBitmap(p, mc, mf, vc, vf)

	stage1 := ApplyFilters(cropOrFull(p, mc), *mf)
	want := ApplyFilters(cropOrFull(stage1, vc), *vf)

	samePixels(t, "two-stage", want, got)

	if got.Bounds().Dx() != 40 || got.Bounds().Dy() != 30 {
		t.Fatalf("size: want=40x30 got=%v", got.Bounds().Size())
	}
}

func TestRenderEffectiveBitmapWithoutVariantIsStageOne(t *testing.T) {
	p := gradient(64, 48)
	mc, mf := rect(4, 4, 32, 24), filters(120, 100, 100, 0)

	samePixels(t, "no variant", RenderLayer(p, mc, mf), RenderEffectiveBitmap(p, mc, mf, nil, nil))
}

func TestDegenerateCropFallsBackToFullExtent(t *testing.T) {
	p := gradient(40, 30)
	degenerate := []*model.CropRectangle{
		nil,
		rect(0, 0, 0, 10),
		rect(0, 0, 10, 0),
		rect(5, 5, -10, 10),
		rect(5, 5, 10, -1),
		rect(100, 100, 10, 10), // entirely outside
	}
	filterCases := []*model.FilterState{nil, filters(120, 100, 100, 0)}

	for i, c := range degenerate {
		for _, f := range filterCases {
			// master stage
			got := RenderEffectiveBitmap(p, c, f, nil, nil)
			want := RenderLayer(p, nil, f)
			samePixels(t, "master fallback", want, got)

			// variant stage
			stage1 := RenderLayer(p, rect(2, 2, 20, 20), nil)
			got = RenderEffectiveBitmap(p, rect(2, 2, 20, 20), nil, c, f)
			want = RenderLayer(stage1, nil, f)
			samePixels(t, "variant fallback", want, got)

			if got.Bounds().Dx() != 20 || got.Bounds().Dy() != 20 {
				t.Fatalf("case %d: variant fallback size want=20x20 got=%v", i, got.Bounds().Size())
			}
		}
	}
}

func TestNeutralFiltersAreIdentity(t *testing.T) {
	p := gradient(16, 16)
	n := model.NeutralFilters()

	samePixels(t, "neutral", p, RenderLayer(p, nil, &n))
	samePixels(t, "neutral apply", p, ApplyFilters(p, n))
}

func TestBrightnessScalesChannels(t *testing.T) {
	p := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			p.SetNRGBA(x, y, color.NRGBA{R: 100, G: 50, B: 200, A: 0xff})
		}
	}

	got := ApplyFilters(p, model.FilterState{Brightness: 120, Contrast: 100, Saturation: 100})
	c := got.NRGBAAt(0, 0)
	if c.R != 120 || c.G != 60 || c.B != 240 {
		t.Fatalf("brightness 120: got %v", c)
	}

	got = ApplyFilters(p, model.FilterState{Brightness: 0, Contrast: 100, Saturation: 100})
	c = got.NRGBAAt(1, 1)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("brightness 0: got %v", c)
	}
}

func TestRenderVirtualMasterBitmap(t *testing.T) {
	p := gradient(1000, 800)

	got := RenderVirtualMasterBitmap(p, rect(100, 50, 400, 300), nil)
	if got.Bounds().Dx() != 400 || got.Bounds().Dy() != 300 {
		t.Fatalf("size: want=400x300 got=%v", got.Bounds().Size())
	}
	if got.NRGBAAt(0, 0) != p.NRGBAAt(100, 50) {
		t.Fatalf("origin: want=%v got=%v", p.NRGBAAt(100, 50), got.NRGBAAt(0, 0))
	}

	// out-of-bounds rectangles are clamped into the physical bitmap
	got = RenderVirtualMasterBitmap(p, rect(-20, 700, 300, 300), nil)
	if got.Bounds().Dx() != 300 || got.Bounds().Dy() != 100 {
		t.Fatalf("clamped size: want=300x100 got=%v", got.Bounds().Size())
	}
	if got.NRGBAAt(0, 0) != p.NRGBAAt(0, 700) {
		t.Fatalf("clamped origin: want=%v got=%v", p.NRGBAAt(0, 700), got.NRGBAAt(0, 0))
	}
}

func TestRenderThumbnailScaleCap(t *testing.T) {
	tests := []struct {
		w, h       int
		boxW, boxH int
		wantW      int
		wantH      int
	}{
		{1000, 800, 200, 200, 200, 160},
		{800, 1000, 200, 200, 160, 200},
		{100, 50, 200, 200, 100, 50}, // never upscales
		{400, 100, 100, 100, 100, 25},
	}

	for _, tt := range tests {
		got := RenderThumbnail(gradient(tt.w, tt.h), tt.boxW, tt.boxH)
		b := got.Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Fatalf("%dx%d in %dx%d: want=%dx%d got=%dx%d", tt.w, tt.h, tt.boxW, tt.boxH, tt.wantW, tt.wantH, b.Dx(), b.Dy())
		}
		if b.Dx() > tt.boxW || b.Dy() > tt.boxH || b.Dx() > tt.w || b.Dy() > tt.h {
			t.Fatalf("%dx%d: thumbnail exceeds box or input: %v", tt.w, tt.h, b.Size())
		}
	}
}

func TestRenderThumbnailPlaceholder(t *testing.T) {
	got := RenderThumbnail(&image.NRGBA{}, 64, 48)
	if got.Bounds().Dx() != 64 || got.Bounds().Dy() != 48 {
		t.Fatalf("placeholder size: want=64x48 got=%v", got.Bounds().Size())
	}
	if got.NRGBAAt(0, 0) == got.NRGBAAt(placeholderCell, 0) {
		t.Fatalf("placeholder: expected alternating cells")
	}
}

func TestCenteredAspectCrop(t *testing.T) {
	tests := []struct {
		w, h  int
		ratio float64
		want  model.CropRectangle
	}{
		{1000, 800, 1, model.CropRectangle{X: 100, Y: 0, Width: 800, Height: 800}},
		{800, 1000, 1, model.CropRectangle{X: 0, Y: 100, Width: 800, Height: 800}},
		{1600, 900, 16.0 / 9.0, model.CropRectangle{X: 0, Y: 0, Width: 1600, Height: 900}},
		{1000, 1000, 2, model.CropRectangle{X: 0, Y: 250, Width: 1000, Height: 500}},
	}

	for _, tt := range tests {
		got := CenteredAspectCrop(tt.w, tt.h, tt.ratio)
		if math.Abs(got.X-tt.want.X) > 1e-6 || math.Abs(got.Y-tt.want.Y) > 1e-6 ||
			math.Abs(got.Width-tt.want.Width) > 1e-6 || math.Abs(got.Height-tt.want.Height) > 1e-6 {
			t.Fatalf("%dx%d @ %v: want=%+v got=%+v", tt.w, tt.h, tt.ratio, tt.want, got)
		}
	}
}
