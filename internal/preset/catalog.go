// Package preset keeps the per-session catalog of filter and crop presets.
package preset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/compositor"
	"github.com/aliskhannn/media-editor/internal/model"
)

var (
	ErrInvalidOrder        = errors.New("invalid preset order")
	ErrReorderNotPersisted = errors.New("preset order not persisted")
)

// source is the persistence side of the catalog.
type source interface {
	ListPresets(ctx context.Context) ([]model.Preset, error)
	ReorderPresets(ctx context.Context, ids []uuid.UUID) error
}

// Catalog holds the filter and crop presets as two independently ordered lists.
type Catalog struct {
	mu      sync.RWMutex
	src     source
	filters []model.Preset
	crops   []model.Preset
}

// Load fetches the presets once and splits them by type.
func Load(ctx context.Context, src source) (*Catalog, error) {
	presets, err := src.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}

	c := &Catalog{src: src}
	for _, p := range presets {
		switch p.Type {
		case model.PresetFilter:
			c.filters = append(c.filters, p)
		case model.PresetCrop:
			c.crops = append(c.crops, p)
		}
	}

	sortByDisplayOrder(c.filters)
	sortByDisplayOrder(c.crops)

	return c, nil
}

// Empty returns a catalog with no presets, used when the fetch failed.
func Empty(src source) *Catalog {
	return &Catalog{src: src}
}

func sortByDisplayOrder(ps []model.Preset) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].DisplayOrder != ps[j].DisplayOrder {
			return ps[i].DisplayOrder < ps[j].DisplayOrder
		}
		return ps[i].Name < ps[j].Name
	})
}

// List returns filter presets followed by crop presets.
func (c *Catalog) List() []model.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Preset, 0, len(c.filters)+len(c.crops))
	out = append(out, c.filters...)
	return append(out, c.crops...)
}

// Filters returns the ordered filter presets.
func (c *Catalog) Filters() []model.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]model.Preset(nil), c.filters...)
}

// Crops returns the ordered crop presets.
func (c *Catalog) Crops() []model.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]model.Preset(nil), c.crops...)
}

// Find looks a preset up by id.
func (c *Catalog) Find(id uuid.UUID) (model.Preset, bool) {
	for _, p := range c.List() {
		if p.ID == id {
			return p, true
		}
	}

	return model.Preset{}, false
}

// Reorder applies a new order for one preset type. The local order changes
// immediately; a persistence failure is reported but not rolled back.
func (c *Catalog) Reorder(ctx context.Context, t model.PresetType, ids []uuid.UUID) error {
	c.mu.Lock()

	list := &c.filters
	if t == model.PresetCrop {
		list = &c.crops
	} else if t != model.PresetFilter {
		c.mu.Unlock()
		return fmt.Errorf("%w: unknown preset type %q", ErrInvalidOrder, t)
	}

	reordered, err := permute(*list, ids)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	*list = reordered
	c.mu.Unlock()

	if err := c.src.ReorderPresets(ctx, ids); err != nil {
		return fmt.Errorf("%w: %w", ErrReorderNotPersisted, err)
	}

	return nil
}

// permute returns presets arranged in ids order with dense ranks 1..n.
func permute(presets []model.Preset, ids []uuid.UUID) ([]model.Preset, error) {
	if len(ids) != len(presets) {
		return nil, fmt.Errorf("%w: got %d ids for %d presets", ErrInvalidOrder, len(ids), len(presets))
	}

	byID := make(map[uuid.UUID]model.Preset, len(presets))
	for _, p := range presets {
		byID[p.ID] = p
	}

	out := make([]model.Preset, 0, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or duplicate preset %s", ErrInvalidOrder, id)
		}
		delete(byID, id)

		p.DisplayOrder = i + 1
		out = append(out, p)
	}

	return out, nil
}

// View is the live state a preset thumbnail is rendered on top of.
type View struct {
	Base    image.Image // master effective bitmap shown in the crop surface
	Crop    model.CropRectangle
	Filters model.FilterState
}

// Thumbnail is a rendered preview of one preset.
type Thumbnail struct {
	Preset model.Preset
	Image  *image.NRGBA
}

// Thumbnails renders every preset applied on top of the current view.
// Crop presets with an unparsable ratio get a placeholder.
func (c *Catalog) Thumbnails(v View, maxW, maxH int) []Thumbnail {
	presets := c.List()
	out := make([]Thumbnail, 0, len(presets))

	for _, p := range presets {
		out = append(out, Thumbnail{Preset: p, Image: Render(p, v, maxW, maxH)})
	}

	return out
}

// Render previews a single preset on the given view.
func Render(p model.Preset, v View, maxW, maxH int) *image.NRGBA {
	crop := v.Crop

	switch p.Type {
	case model.PresetFilter:
		f := model.NeutralFilters()
		if p.Details.Filters != nil {
			f = *p.Details.Filters
		}
		return compositor.RenderThumbnail(compositor.RenderLayer(v.Base, &crop, &f), maxW, maxH)

	case model.PresetCrop:
		ratio, err := p.Ratio()
		if err != nil {
			return compositor.Placeholder(maxW, maxH)
		}
		filters := v.Filters
		view := compositor.RenderLayer(v.Base, &crop, &filters)
		b := view.Bounds()
		centered := compositor.CenteredAspectCrop(b.Dx(), b.Dy(), ratio)
		return compositor.RenderThumbnail(compositor.RenderLayer(view, &centered, nil), maxW, maxH)
	}

	return compositor.Placeholder(maxW, maxH)
}
