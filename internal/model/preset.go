package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PresetType distinguishes filter presets from crop presets.
type PresetType string

const (
	PresetFilter PresetType = "filter"
	PresetCrop   PresetType = "crop"
)

// Valid reports whether t is a known preset type.
func (t PresetType) Valid() bool {
	return t == PresetFilter || t == PresetCrop
}

// PresetDetails holds either filter values or a "W:H" aspect ratio.
type PresetDetails struct {
	Filters     *FilterState
	AspectRatio string
}

// Preset is an admin-curated filter or crop template.
type Preset struct {
	ID           uuid.UUID
	Type         PresetType
	Name         string
	Details      PresetDetails
	DisplayOrder int
}

// Ratio parses the aspect ratio of a crop preset.
func (p Preset) Ratio() (float64, error) {
	if p.Type != PresetCrop {
		return 0, fmt.Errorf("%w: preset %q is not a crop preset", ErrInvalidAspectRatio, p.Name)
	}

	return ParseAspectRatio(p.Details.AspectRatio)
}

// EncodeDetails returns the JSON string stored in preset_details.
func (p Preset) EncodeDetails() (string, error) {
	var v any
	switch p.Type {
	case PresetFilter:
		f := NeutralFilters()
		if p.Details.Filters != nil {
			f = *p.Details.Filters
		}
		v = f
	default:
		v = struct {
			AspectRatio string `json:"aspect_ratio"`
		}{p.Details.AspectRatio}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode preset details: %w", err)
	}

	return string(b), nil
}

// DecodePresetDetails parses preset_details according to the preset type.
func DecodePresetDetails(t PresetType, s string) (PresetDetails, error) {
	if isNullJSON(s) {
		return PresetDetails{}, nil
	}

	switch t {
	case PresetFilter:
		f, err := DecodeNullableFilters(s)
		if err != nil {
			return PresetDetails{}, fmt.Errorf("decode preset details: %w", err)
		}
		return PresetDetails{Filters: f}, nil
	case PresetCrop:
		var c struct {
			AspectRatio string `json:"aspect_ratio"`
		}
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return PresetDetails{}, fmt.Errorf("decode preset details: %w", err)
		}
		return PresetDetails{AspectRatio: c.AspectRatio}, nil
	default:
		return PresetDetails{}, fmt.Errorf("decode preset details: unknown preset type %q", t)
	}
}

type presetJSON struct {
	ID            uuid.UUID  `json:"id"`
	Type          PresetType `json:"type"`
	Name          string     `json:"name"`
	PresetDetails string     `json:"preset_details"`
	DisplayOrder  int        `json:"display_order"`
}

// MarshalJSON implements json.Marshaler.
func (p Preset) MarshalJSON() ([]byte, error) {
	details, err := p.EncodeDetails()
	if err != nil {
		return nil, err
	}

	return json.Marshal(presetJSON{
		ID:            p.ID,
		Type:          p.Type,
		Name:          p.Name,
		PresetDetails: details,
		DisplayOrder:  p.DisplayOrder,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Preset) UnmarshalJSON(data []byte) error {
	var w presetJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	details, err := DecodePresetDetails(w.Type, w.PresetDetails)
	if err != nil {
		return err
	}

	*p = Preset{
		ID:           w.ID,
		Type:         w.Type,
		Name:         w.Name,
		Details:      details,
		DisplayOrder: w.DisplayOrder,
	}

	return nil
}
