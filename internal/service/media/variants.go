package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/model"
)

// ListVariants returns the variants of an existing asset.
func (s *Service) ListVariants(ctx context.Context, assetID uuid.UUID) ([]model.MediaVariant, error) {
	if _, err := s.media.Get(ctx, assetID); err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	variants, err := s.variants.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	return variants, nil
}

// CreateVariant stores a new variant of assetID. details is the
// variant_details JSON string.
func (s *Service) CreateVariant(ctx context.Context, assetID uuid.UUID, variantType, details string) (uuid.UUID, error) {
	v, err := s.buildVariant(ctx, assetID, variantType, details)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create variant: %w", err)
	}

	id, err := s.variants.Create(ctx, v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create variant: %w", err)
	}

	s.publish(ctx, model.NewEvent(model.EventVariantCreated, &assetID, &id, v.VariantType))

	return id, nil
}

// UpdateVariant overwrites variant id. Writing an unchanged payload succeeds.
func (s *Service) UpdateVariant(ctx context.Context, id, assetID uuid.UUID, variantType, details string) error {
	v, err := s.buildVariant(ctx, assetID, variantType, details)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	v.ID = id

	if err := s.variants.Update(ctx, v); err != nil {
		return fmt.Errorf("update variant: %w", err)
	}

	s.publish(ctx, model.NewEvent(model.EventVariantUpdated, &assetID, &id, v.VariantType))

	return nil
}

// buildVariant validates a variant payload against its master asset.
func (s *Service) buildVariant(ctx context.Context, assetID uuid.UUID, variantType, raw string) (model.MediaVariant, error) {
	variantType = strings.TrimSpace(variantType)
	if variantType == "" {
		return model.MediaVariant{}, fmt.Errorf("%w: variant_type is required", ErrInvalidInput)
	}

	details, err := model.DecodeVariantDetails(raw)
	if err != nil {
		return model.MediaVariant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := details.Filters.Validate(); err != nil {
		return model.MediaVariant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	master, err := s.media.Get(ctx, assetID)
	if err != nil {
		return model.MediaVariant{}, err
	}

	if err := validateCrop(details.Crop, master.Width, master.Height); err != nil {
		return model.MediaVariant{}, err
	}

	return model.MediaVariant{
		MediaAssetID: assetID,
		VariantType:  variantType,
		Details:      details,
	}, nil
}
