package editor

import (
	"image"
	"slices"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/compositor"
	"github.com/aliskhannn/media-editor/internal/model"
	"github.com/aliskhannn/media-editor/internal/preset"
)

// Snapshot is a read-only copy of the live session.
type Snapshot struct {
	State     State
	Asset     model.MediaAsset
	VariantID uuid.UUID

	Crop     model.CropRectangle
	Filters  model.FilterState
	Caption  string
	AltText  string
	Details  model.AssetDetails
	Zoom     float64
	Position image.Point

	AspectRatio  float64
	AspectLocked bool

	ImageWidth  int
	ImageHeight int

	Variants []model.MediaVariant
	Presets  []model.Preset
}

// Snapshot copies the live session. It fails with ErrNoSession while
// closed or loading.
func (e *Editor) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.editing()
	if err != nil {
		return Snapshot{}, err
	}

	w, h := e.surface.Dimensions()
	ratio, locked := e.surface.AspectRatio()

	return Snapshot{
		State:        s.state,
		Asset:        s.asset,
		VariantID:    s.variantID,
		Crop:         e.surface.CropBox(),
		Filters:      s.filters,
		Caption:      s.caption,
		AltText:      s.altText,
		Details:      s.details,
		Zoom:         e.surface.Zoom(),
		Position:     e.surface.Position(),
		AspectRatio:  ratio,
		AspectLocked: locked,
		ImageWidth:   w,
		ImageHeight:  h,
		Variants:     slices.Clone(s.variants),
		Presets:      s.presets.List(),
	}, nil
}

// Preview composites the live crop and filters over the master's effective
// bitmap.
func (e *Editor) Preview() (*image.NRGBA, error) {
	e.mu.Lock()
	s, err := e.editing()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	base := s.effective
	crop := e.surface.CropBox()
	filters := s.filters
	e.mu.Unlock()

	return compositor.RenderLayer(base, &crop, &filters), nil
}

// VariantThumbnail is a rendered preview of one stored variant.
type VariantThumbnail struct {
	Variant model.MediaVariant
	Image   *image.NRGBA
}

// VariantThumbnails renders every sibling variant from the physical bitmap
// through both compositing stages.
func (e *Editor) VariantThumbnails() ([]VariantThumbnail, error) {
	e.mu.Lock()
	s, err := e.editing()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	physical := s.physical
	masterCrop, masterFilters := s.masterDefaults()
	variants := slices.Clone(s.variants)
	e.mu.Unlock()

	out := make([]VariantThumbnail, 0, len(variants))
	for _, v := range variants {
		crop, filters := v.Details.Crop, v.Details.Filters
		img := compositor.RenderEffectiveBitmap(physical, masterCrop, masterFilters, &crop, &filters)
		out = append(out, VariantThumbnail{
			Variant: v,
			Image:   compositor.RenderThumbnail(img, e.cfg.ThumbnailWidth, e.cfg.ThumbnailHeight),
		})
	}

	return out, nil
}

// PresetThumbnails previews every preset applied on top of the live view.
func (e *Editor) PresetThumbnails() ([]preset.Thumbnail, error) {
	e.mu.Lock()
	s, err := e.editing()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	view := preset.View{
		Base:    s.effective,
		Crop:    e.surface.CropBox(),
		Filters: s.filters,
	}
	catalog := s.presets
	e.mu.Unlock()

	return catalog.Thumbnails(view, e.cfg.ThumbnailWidth, e.cfg.ThumbnailHeight), nil
}
