package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/media-editor/internal/model"
)

var ErrMediaNotFound = errors.New("media asset not found")

const columns = `id, file_path, file_hash, width, height, admin_title, public_caption, alt_text,
	source_url, attribution, default_crop, filter_state, physical_source_asset_id, created_at, updated_at`

// Filter narrows List.
type Filter struct {
	Query        string // matched against titles, captions and alt text
	PhysicalOnly bool
	Limit        int
	Offset       int
}

// Repository provides persistence for media assets.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an asset and returns it with the generated id and timestamps.
func (r *Repository) Create(ctx context.Context, a model.MediaAsset) (model.MediaAsset, error) {
	crop, err := model.EncodeNullable(a.DefaultCrop)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create: failed to encode crop: %w", err)
	}
	filters, err := model.EncodeNullable(a.FilterState)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create: failed to encode filters: %w", err)
	}

	query := `
		INSERT INTO media_assets (
			file_path, file_hash, width, height, admin_title, public_caption, alt_text,
			source_url, attribution, default_crop, filter_state, physical_source_asset_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err = r.db.Master.QueryRowContext(
		ctx, query,
		a.FilePath, nullString(a.FileHash), a.Width, a.Height,
		a.AdminTitle, a.PublicCaption, a.AltText, a.SourceURL, a.Attribution,
		nullString(crop), nullString(filters), nullUUID(a.PhysicalSourceAssetID),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create: failed to save media asset: %w", err)
	}

	return a, nil
}

// Get returns the asset with the given id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (model.MediaAsset, error) {
	query := `SELECT ` + columns + ` FROM media_assets WHERE id = $1`

	a, err := scan(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MediaAsset{}, ErrMediaNotFound
		}

		return model.MediaAsset{}, fmt.Errorf("get: failed to get media asset: %w", err)
	}

	return a, nil
}

// GetByHash returns the physical asset holding a file with the given hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (model.MediaAsset, error) {
	query := `SELECT ` + columns + ` FROM media_assets WHERE file_hash = $1`

	a, err := scan(r.db.Master.QueryRowContext(ctx, query, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MediaAsset{}, ErrMediaNotFound
		}

		return model.MediaAsset{}, fmt.Errorf("get by hash: failed to get media asset: %w", err)
	}

	return a, nil
}

// List returns one page of assets, newest first, and the total match count.
func (r *Repository) List(ctx context.Context, f Filter) ([]model.MediaAsset, int, error) {
	var (
		where []string
		args  []any
	)

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(admin_title ILIKE $"+n+" OR public_caption ILIKE $"+n+" OR alt_text ILIKE $"+n+")")
	}
	if f.PhysicalOnly {
		where = append(where, "(physical_source_asset_id IS NULL OR physical_source_asset_id = id)")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Master.QueryRowContext(ctx, `SELECT count(*) FROM media_assets`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("list: failed to count media assets: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, max(f.Offset, 0))
	query := `SELECT ` + columns + ` FROM media_assets` + cond +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Master.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list: failed to query media assets: %w", err)
	}
	defer rows.Close()

	assets := make([]model.MediaAsset, 0, limit)
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list: failed to scan media asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list: failed to iterate media assets: %w", err)
	}

	return assets, total, nil
}

// UpdateDetails overwrites the non-pixel metadata of an asset.
func (r *Repository) UpdateDetails(ctx context.Context, id uuid.UUID, d model.AssetDetails) error {
	query := `
		UPDATE media_assets
		SET admin_title = $1, public_caption = $2, alt_text = $3, source_url = $4, attribution = $5,
			updated_at = now()
		WHERE id = $6
	`

	res, err := r.db.Master.ExecContext(ctx, query, d.AdminTitle, d.PublicCaption, d.AltText, d.SourceURL, d.Attribution, id)
	if err != nil {
		return fmt.Errorf("update details: failed to update media asset: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update details: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return ErrMediaNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (model.MediaAsset, error) {
	var (
		a       model.MediaAsset
		hash    sql.NullString
		crop    sql.NullString
		filters sql.NullString
		source  uuid.NullUUID
	)

	err := row.Scan(
		&a.ID, &a.FilePath, &hash, &a.Width, &a.Height,
		&a.AdminTitle, &a.PublicCaption, &a.AltText, &a.SourceURL, &a.Attribution,
		&crop, &filters, &source, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return model.MediaAsset{}, err
	}

	a.FileHash = hash.String
	if source.Valid {
		id := source.UUID
		a.PhysicalSourceAssetID = &id
	}
	if a.DefaultCrop, err = model.DecodeNullableCrop(crop.String); err != nil {
		return model.MediaAsset{}, err
	}
	if a.FilterState, err = model.DecodeNullableFilters(filters.String); err != nil {
		return model.MediaAsset{}, err
	}

	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: *id, Valid: true}
}
