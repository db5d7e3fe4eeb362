package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a persistence write recorded in the audit log.
type EventType string

const (
	EventAssetUploaded       EventType = "asset.uploaded"
	EventAssetDetailsUpdated EventType = "asset.details_updated"
	EventVirtualCreated      EventType = "asset.virtual_created"
	EventVariantCreated      EventType = "variant.created"
	EventVariantUpdated      EventType = "variant.updated"
	EventPresetsReordered    EventType = "presets.reordered"
)

// MediaEvent is published to the queue after every successful write.
type MediaEvent struct {
	ID         uuid.UUID  `json:"id"`
	Type       EventType  `json:"type"`
	AssetID    *uuid.UUID `json:"asset_id,omitempty"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	Summary    string     `json:"summary"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewEvent builds an event stamped with a fresh id and the current time.
func NewEvent(t EventType, assetID, variantID *uuid.UUID, summary string) MediaEvent {
	return MediaEvent{
		ID:         uuid.New(),
		Type:       t,
		AssetID:    assetID,
		VariantID:  variantID,
		Summary:    summary,
		OccurredAt: time.Now().UTC(),
	}
}
