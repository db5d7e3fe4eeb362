// Package dto holds the JSON request and response bodies of the media API.
// Both the HTTP handlers and the gateway client use them.
package dto

import (
	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/model"
)

// Envelope is the part every response carries.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// VariantsResponse answers "fetch variants for master".
type VariantsResponse struct {
	Envelope
	Variants []model.MediaVariant `json:"variants"`
}

// SaveVariantRequest creates a variant; variant_details is a JSON string.
type SaveVariantRequest struct {
	MediaAssetID   uuid.UUID `json:"media_asset_id"`
	VariantType    string    `json:"variant_type"`
	VariantDetails string    `json:"variant_details"`
}

// UpdateVariantRequest overwrites a variant with the same id.
type UpdateVariantRequest struct {
	VariantID      uuid.UUID `json:"variant_id"`
	MediaAssetID   uuid.UUID `json:"media_asset_id"`
	VariantType    string    `json:"variant_type"`
	VariantDetails string    `json:"variant_details"`
}

// VariantIDResponse answers variant saves and updates.
type VariantIDResponse struct {
	Envelope
	VariantID uuid.UUID `json:"variant_id"`
}

// UpdateDetailsRequest changes only the non-pixel metadata of an asset.
type UpdateDetailsRequest struct {
	MediaAssetID uuid.UUID `json:"media_asset_id"`
	model.AssetDetails
}

// CreateVirtualMasterRequest is the "save as new image" payload.
type CreateVirtualMasterRequest struct {
	SourceMediaAssetID uuid.UUID `json:"source_media_asset_id"`
	CurrentCropJSON    string    `json:"current_crop_json"`
	CurrentFiltersJSON string    `json:"current_filters_json"`
	NewAdminTitle      string    `json:"new_admin_title"`
	NewPublicCaption   string    `json:"new_public_caption"`
	NewAltText         string    `json:"new_alt_text"`
	NewSourceURL       string    `json:"new_source_url"`
	NewAttribution     string    `json:"new_attribution"`
}

// MediaResponse carries one asset.
type MediaResponse struct {
	Envelope
	Media model.MediaAsset `json:"media"`
}

// MediaListResponse carries a page of assets.
type MediaListResponse struct {
	Envelope
	Media []model.MediaAsset `json:"media"`
	Total int                `json:"total"`
}

// PresetsResponse carries the ordered preset catalog.
type PresetsResponse struct {
	Envelope
	Presets []model.Preset `json:"presets"`
}

// ReorderPresetsRequest carries the new order of preset ids.
type ReorderPresetsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// EventsResponse carries the audit log of an asset.
type EventsResponse struct {
	Envelope
	Events []model.MediaEvent `json:"events"`
}
