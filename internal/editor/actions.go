package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/gateway"
	"github.com/aliskhannn/media-editor/internal/model"
)

// SaveAsVariant stores the live crop, filters, caption and alt text as a new
// variant of the open master and selects it. An empty variantType falls back
// to the configured default.
func (e *Editor) SaveAsVariant(ctx context.Context, variantType string) (model.MediaVariant, error) {
	variantType = strings.TrimSpace(variantType)
	if variantType == "" {
		variantType = e.cfg.DefaultVariantType
	}

	var (
		assetID   uuid.UUID
		details   model.VariantDetails
		selection uint64
	)

	s, err := e.begin(ActionSaveAsVariant, func(s *session) error {
		assetID = s.asset.ID
		details = e.liveDetails(s)
		selection = s.selection
		return nil
	}, StateEditingMaster)
	if err != nil {
		return model.MediaVariant{}, e.report("save as variant", err)
	}

	return e.createVariant(ctx, s, ActionSaveAsVariant, selection, assetID, variantType, details)
}

// ForkVariant stores the live state of the selected variant as a new variant
// and selects the copy. The original is never overwritten.
func (e *Editor) ForkVariant(ctx context.Context) (model.MediaVariant, error) {
	var (
		assetID     uuid.UUID
		variantType string
		details     model.VariantDetails
		selection   uint64
	)

	s, err := e.begin(ActionForkVariant, func(s *session) error {
		orig, ok := s.findVariant(s.variantID)
		if !ok {
			return ErrVariantNotFound
		}

		assetID = s.asset.ID
		variantType = orig.VariantType + e.cfg.CopySuffix
		details = e.liveDetails(s)
		selection = s.selection
		return nil
	}, StateEditingVariant)
	if err != nil {
		return model.MediaVariant{}, e.report("fork variant", err)
	}

	return e.createVariant(ctx, s, ActionForkVariant, selection, assetID, variantType, details)
}

// createVariant persists a new variant, refreshes the sibling list and makes
// the new record the selection. When the user switched selection while the
// request was out, the new record only joins the sibling list.
func (e *Editor) createVariant(
	ctx context.Context,
	s *session,
	a Action,
	selection uint64,
	assetID uuid.UUID,
	variantType string,
	details model.VariantDetails,
) (model.MediaVariant, error) {
	op := strings.ReplaceAll(string(a), "-", " ")

	id, err := e.gw.CreateVariant(ctx, assetID, variantType, details)
	var (
		siblings []model.MediaVariant
		listErr  error
	)
	if err == nil {
		siblings, listErr = e.gw.ListVariants(ctx, assetID)
	}

	if !e.settle(s, a) {
		return model.MediaVariant{}, fmt.Errorf("%s: %w", op, ErrSessionClosed)
	}
	if err != nil {
		e.mu.Unlock()
		return model.MediaVariant{}, e.report(op, err)
	}

	now := time.Now().UTC()
	v := model.MediaVariant{
		ID:           id,
		MediaAssetID: assetID,
		VariantType:  variantType,
		Details:      details,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if listErr == nil {
		s.variants = siblings
		if stored, ok := s.findVariant(id); ok {
			v = stored
		}
	}
	s.replaceVariant(v)

	if s.selection == selection {
		s.state = StateEditingVariant
		s.variantID = v.ID
		s.selection++
	}

	asset := s.asset
	onSave := s.req.OnSave
	e.mu.Unlock()

	if listErr != nil {
		zlog.Logger.Error().Err(listErr).Str("asset_id", assetID.String()).Msg("failed to refresh variants")
		e.notify(LevelWarning, "Variant saved, but the variant list could not be refreshed.")
	}

	zlog.Logger.Info().
		Str("asset_id", assetID.String()).
		Str("variant_id", v.ID.String()).
		Str("action", string(a)).
		Msg("variant created")
	e.notify(LevelInfo, fmt.Sprintf("Variant %q saved.", variantType))

	if onSave != nil {
		onSave(SaveResult{Action: a, Asset: asset, Variant: &v})
	}

	return v, nil
}

// UpdateVariant overwrites the selected variant with the live state. Saving
// unchanged state succeeds.
func (e *Editor) UpdateVariant(ctx context.Context) (model.MediaVariant, error) {
	var v model.MediaVariant

	s, err := e.begin(ActionUpdateVariant, func(s *session) error {
		cur, ok := s.findVariant(s.variantID)
		if !ok {
			return ErrVariantNotFound
		}

		v = cur
		v.Details = e.liveDetails(s)
		return nil
	}, StateEditingVariant)
	if err != nil {
		return model.MediaVariant{}, e.report("update variant", err)
	}

	_, err = e.gw.UpdateVariant(ctx, v)

	if !e.settle(s, ActionUpdateVariant) {
		return model.MediaVariant{}, fmt.Errorf("update variant: %w", ErrSessionClosed)
	}
	if err != nil {
		e.mu.Unlock()
		if errors.Is(err, gateway.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrVariantNotFound, err)
		}
		return model.MediaVariant{}, e.report("update variant", err)
	}

	v.UpdatedAt = time.Now().UTC()
	s.replaceVariant(v)

	asset := s.asset
	onSave := s.req.OnSave
	e.mu.Unlock()

	zlog.Logger.Info().Str("variant_id", v.ID.String()).Msg("variant updated")
	e.notify(LevelInfo, fmt.Sprintf("Variant %q updated.", v.VariantType))

	if onSave != nil {
		onSave(SaveResult{Action: ActionUpdateVariant, Asset: asset, Variant: &v})
	}

	return v, nil
}

// SaveAsNewImage persists the live crop and filters of a physical master as
// a new virtual master and reopens the editor on it. Callbacks carry over;
// the old session ends without OnClose.
func (e *Editor) SaveAsNewImage(ctx context.Context) (model.MediaAsset, error) {
	var (
		r   model.VirtualMasterRequest
		req OpenRequest
	)

	s, err := e.begin(ActionSaveAsNewImage, func(s *session) error {
		if !s.asset.IsPhysical() {
			return fmt.Errorf("%w: the open image is already derived from another image", ErrNotAllowed)
		}

		r = model.VirtualMasterRequest{
			SourceMediaAssetID: s.asset.PhysicalAncestorID(),
			Crop:               e.surface.CropBox().Round(),
			Filters:            s.filters,
			Details:            s.details,
		}
		req = s.req
		req.TargetVariantID = uuid.Nil
		return nil
	}, StateEditingMaster)
	if err != nil {
		return model.MediaAsset{}, e.report("save as new image", err)
	}

	asset, err := e.gw.CreateVirtualMaster(ctx, r)

	if !e.settle(s, ActionSaveAsNewImage) {
		return model.MediaAsset{}, fmt.Errorf("save as new image: %w", ErrSessionClosed)
	}
	if err != nil {
		e.mu.Unlock()
		return model.MediaAsset{}, e.report("save as new image", err)
	}

	req.Asset = asset
	next := newSession(req)
	e.detach()
	e.cur = next
	e.mu.Unlock()

	zlog.Logger.Info().
		Str("asset_id", asset.ID.String()).
		Str("source_id", r.SourceMediaAssetID.String()).
		Msg("virtual master created")
	e.notify(LevelInfo, "Saved as a new image.")

	if req.OnSave != nil {
		req.OnSave(SaveResult{Action: ActionSaveAsNewImage, Asset: asset})
	}

	return asset, e.load(ctx, next)
}

// SaveMasterDetails persists the non-pixel metadata of the open master.
func (e *Editor) SaveMasterDetails(ctx context.Context) (model.MediaAsset, error) {
	var (
		id      uuid.UUID
		details model.AssetDetails
	)

	s, err := e.begin(ActionSaveMasterDetails, func(s *session) error {
		id = s.asset.ID
		details = s.details
		return nil
	}, StateEditingMaster)
	if err != nil {
		return model.MediaAsset{}, e.report("save details", err)
	}

	err = e.gw.UpdateAssetDetails(ctx, id, details)

	if !e.settle(s, ActionSaveMasterDetails) {
		return model.MediaAsset{}, fmt.Errorf("save details: %w", ErrSessionClosed)
	}
	if err != nil {
		e.mu.Unlock()
		return model.MediaAsset{}, e.report("save details", err)
	}

	s.asset = s.asset.WithDetails(details)
	asset := s.asset
	onSave := s.req.OnSave
	e.mu.Unlock()

	zlog.Logger.Info().Str("asset_id", id.String()).Msg("asset details saved")
	e.notify(LevelInfo, "Image details saved.")

	if onSave != nil {
		onSave(SaveResult{Action: ActionSaveMasterDetails, Asset: asset})
	}

	return asset, nil
}

// UseForContext saves the live state as a variant named after the context
// label, hands it to OnSave and closes the session. The session stays open
// when saving fails.
func (e *Editor) UseForContext(ctx context.Context) (model.MediaVariant, error) {
	var (
		assetID     uuid.UUID
		variantType string
		details     model.VariantDetails
	)

	s, err := e.begin(ActionUseForContext, func(s *session) error {
		label := strings.TrimSpace(s.req.ContextLabel)
		if label == "" {
			return fmt.Errorf("%w: the editor was opened without a context", ErrNotAllowed)
		}

		assetID = s.asset.ID
		variantType = contextVariantName(s, label)
		details = e.liveDetails(s)
		return nil
	}, StateEditingMaster, StateEditingVariant)
	if err != nil {
		return model.MediaVariant{}, e.report("use for context", err)
	}

	id, err := e.gw.CreateVariant(ctx, assetID, variantType, details)

	if !e.settle(s, ActionUseForContext) {
		return model.MediaVariant{}, fmt.Errorf("use for context: %w", ErrSessionClosed)
	}
	if err != nil {
		e.mu.Unlock()
		return model.MediaVariant{}, e.report("use for context", err)
	}

	now := time.Now().UTC()
	v := model.MediaVariant{
		ID:           id,
		MediaAssetID: assetID,
		VariantType:  variantType,
		Details:      details,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	asset := s.asset
	e.detach()
	e.mu.Unlock()

	zlog.Logger.Info().
		Str("asset_id", assetID.String()).
		Str("variant_id", id.String()).
		Str("context", s.req.ContextLabel).
		Msg("variant created for context")

	if s.req.OnSave != nil {
		s.req.OnSave(SaveResult{Action: ActionUseForContext, Asset: asset, Variant: &v})
	}
	if s.req.OnClose != nil {
		s.req.OnClose()
	}

	return v, nil
}

// contextVariantName is "<base> - <label>". The base is the live title when
// the user changed it after opening, the stored title otherwise.
func contextVariantName(s *session, label string) string {
	base := strings.TrimSpace(s.asset.AdminTitle)
	if live := strings.TrimSpace(s.details.AdminTitle); live != "" && live != strings.TrimSpace(s.openedTitle) {
		base = live
	}

	if base == "" {
		return label
	}

	return base + " - " + label
}
