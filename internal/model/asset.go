package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaAsset is a stored image record. It is either physical (backed by an
// uploaded file) or a virtual master derived from a physical ancestor by
// its own default crop and filters.
type MediaAsset struct {
	ID                    uuid.UUID
	FilePath              string
	ImageURL              string
	FileHash              string
	Width                 int
	Height                int
	AdminTitle            string
	PublicCaption         string
	AltText               string
	SourceURL             string
	Attribution           string
	DefaultCrop           *CropRectangle
	FilterState           *FilterState
	PhysicalSourceAssetID *uuid.UUID
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsPhysical reports whether the asset has no physical source or points at itself.
func (a MediaAsset) IsPhysical() bool {
	return a.PhysicalSourceAssetID == nil || *a.PhysicalSourceAssetID == a.ID
}

// PhysicalAncestorID returns the id of the asset holding the actual pixels.
func (a MediaAsset) PhysicalAncestorID() uuid.UUID {
	if a.IsPhysical() {
		return a.ID
	}

	return *a.PhysicalSourceAssetID
}

// HasOwnTransform reports whether the asset carries a usable default crop or filters.
func (a MediaAsset) HasOwnTransform() bool {
	if a.DefaultCrop != nil && a.DefaultCrop.Valid() {
		return true
	}

	return a.FilterState != nil
}

// Details returns the non-pixel metadata of the asset.
func (a MediaAsset) Details() AssetDetails {
	return AssetDetails{
		AdminTitle:    a.AdminTitle,
		PublicCaption: a.PublicCaption,
		AltText:       a.AltText,
		SourceURL:     a.SourceURL,
		Attribution:   a.Attribution,
	}
}

// WithDetails returns a copy of the asset with its metadata replaced.
func (a MediaAsset) WithDetails(d AssetDetails) MediaAsset {
	a.AdminTitle = d.AdminTitle
	a.PublicCaption = d.PublicCaption
	a.AltText = d.AltText
	a.SourceURL = d.SourceURL
	a.Attribution = d.Attribution

	return a
}

// AssetDetails is the part of an asset that "update asset details" may change.
type AssetDetails struct {
	AdminTitle    string `json:"admin_title"`
	PublicCaption string `json:"public_caption"`
	AltText       string `json:"alt_text"`
	SourceURL     string `json:"source_url"`
	Attribution   string `json:"attribution"`
}

// mediaAssetJSON is the wire shape: crop and filter columns travel as
// nullable JSON-encoded strings.
type mediaAssetJSON struct {
	ID                    uuid.UUID  `json:"id"`
	FilePath              string     `json:"file_path"`
	ImageURL              string     `json:"image_url"`
	FileHash              string     `json:"file_hash"`
	Width                 int        `json:"width"`
	Height                int        `json:"height"`
	AdminTitle            string     `json:"admin_title"`
	PublicCaption         string     `json:"public_caption"`
	AltText               string     `json:"alt_text"`
	SourceURL             string     `json:"source_url"`
	Attribution           string     `json:"attribution"`
	DefaultCrop           *string    `json:"default_crop"`
	FilterState           *string    `json:"filter_state"`
	PhysicalSourceAssetID *uuid.UUID `json:"physical_source_asset_id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
func (a MediaAsset) MarshalJSON() ([]byte, error) {
	w := mediaAssetJSON{
		ID:                    a.ID,
		FilePath:              a.FilePath,
		ImageURL:              a.ImageURL,
		FileHash:              a.FileHash,
		Width:                 a.Width,
		Height:                a.Height,
		AdminTitle:            a.AdminTitle,
		PublicCaption:         a.PublicCaption,
		AltText:               a.AltText,
		SourceURL:             a.SourceURL,
		Attribution:           a.Attribution,
		PhysicalSourceAssetID: a.PhysicalSourceAssetID,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}

	if a.DefaultCrop != nil {
		s, err := EncodeNullable(a.DefaultCrop)
		if err != nil {
			return nil, fmt.Errorf("encode default crop: %w", err)
		}
		w.DefaultCrop = &s
	}

	if a.FilterState != nil {
		s, err := EncodeNullable(a.FilterState)
		if err != nil {
			return nil, fmt.Errorf("encode filter state: %w", err)
		}
		w.FilterState = &s
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *MediaAsset) UnmarshalJSON(data []byte) error {
	var w mediaAssetJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*a = MediaAsset{
		ID:                    w.ID,
		FilePath:              w.FilePath,
		ImageURL:              w.ImageURL,
		FileHash:              w.FileHash,
		Width:                 w.Width,
		Height:                w.Height,
		AdminTitle:            w.AdminTitle,
		PublicCaption:         w.PublicCaption,
		AltText:               w.AltText,
		SourceURL:             w.SourceURL,
		Attribution:           w.Attribution,
		PhysicalSourceAssetID: w.PhysicalSourceAssetID,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
	}

	var err error
	if w.DefaultCrop != nil {
		if a.DefaultCrop, err = DecodeNullableCrop(*w.DefaultCrop); err != nil {
			return err
		}
	}
	if w.FilterState != nil {
		if a.FilterState, err = DecodeNullableFilters(*w.FilterState); err != nil {
			return err
		}
	}

	return nil
}

// VirtualMasterRequest describes a "save as new image" request.
type VirtualMasterRequest struct {
	SourceMediaAssetID uuid.UUID
	Crop               CropRectangle
	Filters            FilterState
	Details            AssetDetails
}
