// Package media implements the persistence gateway: assets, variants,
// presets and the audit log of writes.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/model"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	"github.com/aliskhannn/media-editor/internal/storage/file"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotPhysical  = fmt.Errorf("%w: source asset is not physical", ErrInvalidInput)
)

// mediaRepository persists media assets.
type mediaRepository interface {
	Create(ctx context.Context, a model.MediaAsset) (model.MediaAsset, error)
	Get(ctx context.Context, id uuid.UUID) (model.MediaAsset, error)
	GetByHash(ctx context.Context, hash string) (model.MediaAsset, error)
	List(ctx context.Context, f mediarepo.Filter) ([]model.MediaAsset, int, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, d model.AssetDetails) error
}

// variantRepository persists variants.
type variantRepository interface {
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]model.MediaVariant, error)
	Create(ctx context.Context, v model.MediaVariant) (uuid.UUID, error)
	Update(ctx context.Context, v model.MediaVariant) error
}

// presetRepository persists the preset catalog.
type presetRepository interface {
	List(ctx context.Context) ([]model.Preset, error)
	Reorder(ctx context.Context, ids []uuid.UUID) error
}

// eventRepository persists the audit log.
type eventRepository interface {
	Save(ctx context.Context, e model.MediaEvent) error
	ListByAsset(ctx context.Context, assetID uuid.UUID, limit int) ([]model.MediaEvent, error)
}

// fileStorage stores physical files (e.g., MinIO).
type fileStorage interface {
	Save(ctx context.Context, subdir, filename string, src io.Reader, size int64, contentType string) (string, error)
	Load(ctx context.Context, objectPath string) (file.Object, error)
}

// presetCache caches the ordered preset catalog (e.g., Redis).
type presetCache interface {
	Get(ctx context.Context) ([]model.Preset, bool, error)
	Set(ctx context.Context, presets []model.Preset) error
	Invalidate(ctx context.Context) error
}

// producer publishes media events to a message broker (e.g., Kafka).
type producer interface {
	Publish(ctx context.Context, e model.MediaEvent) error
}

// Repositories groups the storage dependencies of the service.
type Repositories struct {
	Media    mediaRepository
	Variants variantRepository
	Presets  presetRepository
	Events   eventRepository
}

// Service provides the business logic behind the media API.
type Service struct {
	media    mediaRepository
	variants variantRepository
	presets  presetRepository
	events   eventRepository
	storage  fileStorage
	cache    presetCache
	producer producer
}

// NewService creates a new Service. cache may be nil, in which case
// presets are always read from the repository.
func NewService(r Repositories, fs fileStorage, c presetCache, p producer) *Service {
	return &Service{
		media:    r.Media,
		variants: r.Variants,
		presets:  r.Presets,
		events:   r.Events,
		storage:  fs,
		cache:    c,
		producer: p,
	}
}

// publish sends e to the broker. Failures are logged and otherwise ignored.
func (s *Service) publish(ctx context.Context, e model.MediaEvent) {
	if s.producer == nil {
		return
	}

	if err := s.producer.Publish(ctx, e); err != nil {
		zlog.Logger.Err(err).
			Str("event_type", string(e.Type)).
			Str("event_id", e.ID.String()).
			Msg("failed to publish media event")
	}
}

// RecordEvent stores an event consumed from the broker.
func (s *Service) RecordEvent(ctx context.Context, e model.MediaEvent) error {
	if err := s.events.Save(ctx, e); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	return nil
}

// ListEvents returns the most recent events of an asset.
func (s *Service) ListEvents(ctx context.Context, assetID uuid.UUID, limit int) ([]model.MediaEvent, error) {
	if _, err := s.media.Get(ctx, assetID); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events, err := s.events.ListByAsset(ctx, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}
