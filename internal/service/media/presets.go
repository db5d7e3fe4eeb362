package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/model"
)

// ListPresets returns the ordered catalog, reading through the cache.
func (s *Service) ListPresets(ctx context.Context) ([]model.Preset, error) {
	if s.cache != nil {
		presets, ok, err := s.cache.Get(ctx)
		if err != nil {
			zlog.Logger.Warn().Err(err).Msg("preset cache unavailable")
		}
		if ok {
			return presets, nil
		}
	}

	presets, err := s.presets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, presets); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to cache presets")
		}
	}

	return presets, nil
}

// ReorderPresets assigns display orders 1..n following ids.
func (s *Service) ReorderPresets(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return fmt.Errorf("reorder presets: %w: ids are required", ErrInvalidInput)
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reorder presets: %w: duplicate id %s", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	if err := s.presets.Reorder(ctx, ids); err != nil {
		return fmt.Errorf("reorder presets: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to invalidate preset cache")
		}
	}

	s.publish(ctx, model.NewEvent(model.EventPresetsReordered, nil, nil, fmt.Sprintf("%d presets", len(ids))))

	return nil
}
