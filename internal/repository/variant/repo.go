package variant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/media-editor/internal/model"
)

var ErrVariantNotFound = errors.New("variant not found")

// Repository provides persistence for media variants.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// ListByAsset returns the variants of a master in creation order.
func (r *Repository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]model.MediaVariant, error) {
	query := `
		SELECT id, variant_type, variant_details, created_at, updated_at
		FROM media_variants
		WHERE media_asset_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Master.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query variants: %w", err)
	}
	defer rows.Close()

	variants := make([]model.MediaVariant, 0)
	for rows.Next() {
		v := model.MediaVariant{MediaAssetID: assetID}

		var details string
		if err := rows.Scan(&v.ID, &v.VariantType, &details, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list: failed to scan variant: %w", err)
		}

		if v.Details, err = model.DecodeVariantDetails(details); err != nil {
			return nil, fmt.Errorf("list: variant %s: %w", v.ID, err)
		}

		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: failed to iterate variants: %w", err)
	}

	return variants, nil
}

// Create inserts a variant and returns its id.
func (r *Repository) Create(ctx context.Context, v model.MediaVariant) (uuid.UUID, error) {
	details, err := v.Details.Encode()
	if err != nil {
		return uuid.Nil, fmt.Errorf("create: %w", err)
	}

	query := `
		INSERT INTO media_variants (media_asset_id, variant_type, variant_details)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id uuid.UUID
	if err := r.db.Master.QueryRowContext(ctx, query, v.MediaAssetID, v.VariantType, details).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("create: failed to save variant: %w", err)
	}

	return id, nil
}

// Update overwrites the variant with id v.ID. Rewriting identical values
// still matches the row and succeeds.
func (r *Repository) Update(ctx context.Context, v model.MediaVariant) error {
	details, err := v.Details.Encode()
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	query := `
		UPDATE media_variants
		SET variant_type = $1, variant_details = $2, updated_at = now()
		WHERE id = $3 AND media_asset_id = $4
	`

	res, err := r.db.Master.ExecContext(ctx, query, v.VariantType, details, v.ID, v.MediaAssetID)
	if err != nil {
		return fmt.Errorf("update: failed to update variant: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return ErrVariantNotFound
	}

	return nil
}
