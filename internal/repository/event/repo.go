package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/media-editor/internal/model"
)

// Repository stores the media event audit log.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Save records e. Redelivered events are ignored.
func (r *Repository) Save(ctx context.Context, e model.MediaEvent) error {
	query := `
		INSERT INTO media_events (id, type, asset_id, variant_id, summary, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.Master.ExecContext(ctx, query, e.ID, e.Type, nullUUID(e.AssetID), nullUUID(e.VariantID), e.Summary, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("save: failed to save event: %w", err)
	}

	return nil
}

// ListByAsset returns the newest events of an asset.
func (r *Repository) ListByAsset(ctx context.Context, assetID uuid.UUID, limit int) ([]model.MediaEvent, error) {
	query := `
		SELECT id, type, asset_id, variant_id, summary, occurred_at
		FROM media_events
		WHERE asset_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.Master.QueryContext(ctx, query, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]model.MediaEvent, 0)
	for rows.Next() {
		var (
			e         model.MediaEvent
			asset     uuid.NullUUID
			variantID uuid.NullUUID
		)
		if err := rows.Scan(&e.ID, &e.Type, &asset, &variantID, &e.Summary, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("list: failed to scan event: %w", err)
		}

		if asset.Valid {
			e.AssetID = &asset.UUID
		}
		if variantID.Valid {
			e.VariantID = &variantID.UUID
		}

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: failed to iterate events: %w", err)
	}

	return events, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: *id, Valid: true}
}
