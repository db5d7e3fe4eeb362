package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidFilter      = errors.New("invalid filter value")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
)

// Filter ranges follow CSS filter semantics: percentages for brightness,
// contrast and saturation, degrees for hue.
const (
	MaxPercent = 200
	MaxHue     = 360

	NeutralPercent = 100
	NeutralHue     = 0
)

// CropRectangle is a crop box in pixels, relative to the bitmap it is applied to.
type CropRectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FullCrop returns a crop covering a whole w×h bitmap.
func FullCrop(w, h int) CropRectangle {
	return CropRectangle{Width: float64(w), Height: float64(h)}
}

// Valid reports whether the rectangle has a positive area.
func (r CropRectangle) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Clamp moves the rectangle into a w×h bitmap: x,y >= 0 and
// width/height no larger than the bounds minus the offset.
func (r CropRectangle) Clamp(w, h int) CropRectangle {
	fw, fh := float64(w), float64(h)

	r.X = math.Min(math.Max(r.X, 0), fw)
	r.Y = math.Min(math.Max(r.Y, 0), fh)
	r.Width = math.Min(r.Width, fw-r.X)
	r.Height = math.Min(r.Height, fh-r.Y)

	return r
}

// Round snaps the rectangle to whole pixels.
func (r CropRectangle) Round() CropRectangle {
	return CropRectangle{
		X:      math.Round(r.X),
		Y:      math.Round(r.Y),
		Width:  math.Round(r.Width),
		Height: math.Round(r.Height),
	}
}

// FilterState holds the four adjustable filter sliders.
type FilterState struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Hue        float64 `json:"hue"`
}

// NeutralFilters returns the identity filter state (100/100/100/0).
func NeutralFilters() FilterState {
	return FilterState{
		Brightness: NeutralPercent,
		Contrast:   NeutralPercent,
		Saturation: NeutralPercent,
		Hue:        NeutralHue,
	}
}

// IsNeutral reports whether applying f leaves pixels unchanged.
func (f FilterState) IsNeutral() bool {
	return f == NeutralFilters()
}

// Validate checks every slider against its range.
func (f FilterState) Validate() error {
	checks := []struct {
		name  string
		value float64
		max   float64
	}{
		{"brightness", f.Brightness, MaxPercent},
		{"contrast", f.Contrast, MaxPercent},
		{"saturation", f.Saturation, MaxPercent},
		{"hue", f.Hue, MaxHue},
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < 0 || c.value > c.max {
			return fmt.Errorf("%w: %s=%v (range 0-%v)", ErrInvalidFilter, c.name, c.value, c.max)
		}
	}

	return nil
}

// UnmarshalJSON fills missing sliders with their neutral value, so a
// partial object such as {"brightness":120} is a complete filter state.
func (f *FilterState) UnmarshalJSON(data []byte) error {
	type partial struct {
		Brightness *float64 `json:"brightness"`
		Contrast   *float64 `json:"contrast"`
		Saturation *float64 `json:"saturation"`
		Hue        *float64 `json:"hue"`
	}

	var p partial
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*f = NeutralFilters()
	if p.Brightness != nil {
		f.Brightness = *p.Brightness
	}
	if p.Contrast != nil {
		f.Contrast = *p.Contrast
	}
	if p.Saturation != nil {
		f.Saturation = *p.Saturation
	}
	if p.Hue != nil {
		f.Hue = *p.Hue
	}

	return nil
}

// ParseAspectRatio parses a "W:H" string into width/height.
func ParseAspectRatio(s string) (float64, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}

	fw, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}
	fh, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}

	if fw <= 0 || fh <= 0 || math.IsInf(fw, 0) || math.IsInf(fh, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}

	return fw / fh, nil
}

// isNullJSON reports whether a stored JSON string means "absent".
func isNullJSON(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "null"
}

// DecodeNullableCrop decodes a JSON-encoded crop column.
// An empty string or the literal "null" yields nil.
func DecodeNullableCrop(s string) (*CropRectangle, error) {
	if isNullJSON(s) {
		return nil, nil
	}

	var r CropRectangle
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, fmt.Errorf("decode crop: %w", err)
	}

	return &r, nil
}

// DecodeNullableFilters decodes a JSON-encoded filter column.
// An empty string or the literal "null" yields nil.
func DecodeNullableFilters(s string) (*FilterState, error) {
	if isNullJSON(s) {
		return nil, nil
	}

	var f FilterState
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}

	return &f, nil
}

// EncodeNullable encodes v as a JSON string column; nil pointers become "".
func EncodeNullable[T any](v *T) (string, error) {
	if v == nil {
		return "", nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
