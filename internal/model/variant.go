package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VariantDetails is the payload of a variant: a crop relative to the
// master's effective bitmap, filters, and public texts.
type VariantDetails struct {
	Crop    CropRectangle `json:"crop"`
	Filters FilterState   `json:"filters"`
	Caption string        `json:"caption"`
	AltText string        `json:"altText"`
}

// Encode returns the JSON string stored in variant_details.
func (d VariantDetails) Encode() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode variant details: %w", err)
	}

	return string(b), nil
}

// DecodeVariantDetails parses a variant_details JSON string.
func DecodeVariantDetails(s string) (VariantDetails, error) {
	d := VariantDetails{Filters: NeutralFilters()}
	if isNullJSON(s) {
		return d, nil
	}

	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return VariantDetails{}, fmt.Errorf("decode variant details: %w", err)
	}

	return d, nil
}

// MediaVariant is a named, non-destructive transform layered on a master asset.
type MediaVariant struct {
	ID           uuid.UUID
	MediaAssetID uuid.UUID
	VariantType  string
	Details      VariantDetails
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type mediaVariantJSON struct {
	ID             uuid.UUID `json:"id"`
	MediaAssetID   uuid.UUID `json:"media_asset_id"`
	VariantType    string    `json:"variant_type"`
	VariantDetails string    `json:"variant_details"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler; variant_details is a JSON string.
func (v MediaVariant) MarshalJSON() ([]byte, error) {
	details, err := v.Details.Encode()
	if err != nil {
		return nil, err
	}

	return json.Marshal(mediaVariantJSON{
		ID:             v.ID,
		MediaAssetID:   v.MediaAssetID,
		VariantType:    v.VariantType,
		VariantDetails: details,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *MediaVariant) UnmarshalJSON(data []byte) error {
	var w mediaVariantJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	details, err := DecodeVariantDetails(w.VariantDetails)
	if err != nil {
		return err
	}

	*v = MediaVariant{
		ID:           w.ID,
		MediaAssetID: w.MediaAssetID,
		VariantType:  w.VariantType,
		Details:      details,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}

	return nil
}
