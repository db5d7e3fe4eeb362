package editor

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/model"
	"github.com/aliskhannn/media-editor/internal/preset"
)

// ResetTarget names the control(s) Reset restores.
type ResetTarget string

const (
	ResetZoom       ResetTarget = "zoom"
	ResetBrightness ResetTarget = "brightness"
	ResetContrast   ResetTarget = "contrast"
	ResetSaturation ResetTarget = "saturation"
	ResetHue        ResetTarget = "hue"
	ResetCrop       ResetTarget = "crop"
	ResetCropZoom   ResetTarget = "crop+zoom"
	ResetPosition   ResetTarget = "position"
	ResetAllFilters ResetTarget = "all-filters"
)

// SelectMaster switches to editing the master with a full crop and neutral
// sliders. A virtual master is re-baked from its stored defaults.
func (e *Editor) SelectMaster() error {
	e.mu.Lock()
	s, err := e.editing()
	if err == nil {
		e.enterMaster(s)
	}
	e.mu.Unlock()

	if err != nil {
		return e.report("select master", err)
	}

	return nil
}

// SelectVariant switches to editing the variant id of the open master.
func (e *Editor) SelectVariant(id uuid.UUID) error {
	e.mu.Lock()
	s, err := e.editing()
	if err == nil {
		if v, ok := s.findVariant(id); ok {
			e.enterVariant(s, v)
		} else {
			err = fmt.Errorf("%w: %s", ErrVariantNotFound, id)
		}
	}
	e.mu.Unlock()

	if err != nil {
		return e.report("select variant", err)
	}

	return nil
}

// Reset restores target to its default without changing the selection.
// Crop resets also release an aspect lock.
func (e *Editor) Reset(target ResetTarget) error {
	return e.control("reset", func(s *session) error {
		neutral := model.NeutralFilters()

		switch target {
		case ResetZoom:
			e.surface.SetZoom(1)
		case ResetBrightness:
			s.filters.Brightness = neutral.Brightness
		case ResetContrast:
			s.filters.Contrast = neutral.Contrast
		case ResetSaturation:
			s.filters.Saturation = neutral.Saturation
		case ResetHue:
			s.filters.Hue = neutral.Hue
		case ResetCrop:
			e.resetCrop()
			s.filters = neutral
		case ResetCropZoom:
			e.resetCrop()
			e.surface.SetZoom(1)
		case ResetPosition:
			e.surface.SetPosition(image.Point{})
		case ResetAllFilters:
			s.filters = neutral
		default:
			return fmt.Errorf("%w: unknown reset target %q", ErrInvalidInput, target)
		}

		return nil
	})
}

func (e *Editor) resetCrop() {
	e.surface.UnlockAspectRatio()
	w, h := e.surface.Dimensions()
	e.surface.SetCropBox(model.FullCrop(w, h))
}

// ApplyPreset applies a filter preset to the sliders, or locks the crop box
// to a crop preset's aspect ratio.
func (e *Editor) ApplyPreset(id uuid.UUID) error {
	return e.control("apply preset", func(s *session) error {
		p, ok := s.presets.Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPresetNotFound, id)
		}

		switch p.Type {
		case model.PresetFilter:
			if p.Details.Filters == nil {
				return fmt.Errorf("%w: preset %q has no filters", ErrInvalidInput, p.Name)
			}
			if err := p.Details.Filters.Validate(); err != nil {
				return err
			}
			s.filters = *p.Details.Filters
		case model.PresetCrop:
			ratio, err := p.Ratio()
			if err != nil {
				return err
			}
			e.surface.LockAspectRatio(ratio)
		default:
			return fmt.Errorf("%w: unknown preset type %q", ErrInvalidInput, p.Type)
		}

		return nil
	})
}

// UnlockAspect releases the aspect ratio lock, keeping the crop box.
func (e *Editor) UnlockAspect() error {
	return e.control("unlock aspect", func(*session) error {
		e.surface.UnlockAspectRatio()
		return nil
	})
}

// ResizeCrop resizes the crop box as a user drag would, honoring an aspect lock.
func (e *Editor) ResizeCrop(width, height float64) error {
	return e.control("resize crop", func(*session) error {
		e.surface.ResizeCropBox(width, height)
		return nil
	})
}

// SetCrop moves and resizes the crop box.
func (e *Editor) SetCrop(r model.CropRectangle) error {
	return e.control("set crop", func(*session) error {
		e.surface.SetCropBox(r)
		return nil
	})
}

// SetZoom sets the surface zoom.
func (e *Editor) SetZoom(z float64) error {
	return e.control("set zoom", func(*session) error {
		e.surface.SetZoom(z)
		return nil
	})
}

// SetPosition pans the surface.
func (e *Editor) SetPosition(p image.Point) error {
	return e.control("set position", func(*session) error {
		e.surface.SetPosition(p)
		return nil
	})
}

// SetFilters replaces all four sliders.
func (e *Editor) SetFilters(f model.FilterState) error {
	return e.control("set filters", func(s *session) error {
		if err := f.Validate(); err != nil {
			return err
		}
		s.filters = f
		return nil
	})
}

// SetCaption sets the variant caption field.
func (e *Editor) SetCaption(caption string) error {
	return e.control("set caption", func(s *session) error {
		s.caption = caption
		return nil
	})
}

// SetAltText sets the variant alt text field.
func (e *Editor) SetAltText(alt string) error {
	return e.control("set alt text", func(s *session) error {
		s.altText = alt
		return nil
	})
}

// SetDetails replaces the master metadata fields saved by SaveMasterDetails.
func (e *Editor) SetDetails(d model.AssetDetails) error {
	return e.control("set details", func(s *session) error {
		s.details = d
		return nil
	})
}

// ReorderPresets applies a new order to one preset type. The new order is
// kept locally even when it cannot be persisted.
func (e *Editor) ReorderPresets(ctx context.Context, t model.PresetType, ids []uuid.UUID) error {
	e.mu.Lock()
	s, err := e.editing()
	var catalog *preset.Catalog
	if err == nil {
		catalog = s.presets
	}
	e.mu.Unlock()

	if err != nil {
		return e.report("reorder presets", err)
	}

	if err := catalog.Reorder(ctx, t, ids); err != nil {
		return e.report("reorder presets", err)
	}

	return nil
}

// control runs fn against the editing session under the lock.
func (e *Editor) control(op string, fn func(s *session) error) error {
	e.mu.Lock()
	s, err := e.editing()
	if err == nil {
		err = fn(s)
	}
	e.mu.Unlock()

	if err != nil {
		return e.report(op, err)
	}

	return nil
}
