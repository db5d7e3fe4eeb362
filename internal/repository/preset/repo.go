package preset

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/media-editor/internal/model"
)

var ErrPresetNotFound = errors.New("preset not found")

// Repository provides persistence for presets.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// List returns all presets ordered by type and display order.
func (r *Repository) List(ctx context.Context) ([]model.Preset, error) {
	query := `
		SELECT id, type, name, preset_details, display_order
		FROM presets
		ORDER BY type DESC, display_order, name
	`

	rows, err := r.db.Master.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query presets: %w", err)
	}
	defer rows.Close()

	presets := make([]model.Preset, 0)
	for rows.Next() {
		var (
			p       model.Preset
			details string
		)
		if err := rows.Scan(&p.ID, &p.Type, &p.Name, &details, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("list: failed to scan preset: %w", err)
		}

		if p.Details, err = model.DecodePresetDetails(p.Type, details); err != nil {
			return nil, fmt.Errorf("list: preset %s: %w", p.ID, err)
		}

		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: failed to iterate presets: %w", err)
	}

	return presets, nil
}

// Reorder assigns display orders 1..n following ids in one transaction.
func (r *Repository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reorder: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, id := range ids {
		res, err := tx.ExecContext(ctx, `UPDATE presets SET display_order = $1 WHERE id = $2`, i+1, id)
		if err != nil {
			return fmt.Errorf("reorder: failed to update preset %s: %w", id, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reorder: failed to get number of rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("reorder: %w: %s", ErrPresetNotFound, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reorder: failed to commit: %w", err)
	}

	return nil
}
