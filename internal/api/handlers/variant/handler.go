package variant

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/api/dto"
	"github.com/aliskhannn/media-editor/internal/api/respond"
	"github.com/aliskhannn/media-editor/internal/model"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	variantrepo "github.com/aliskhannn/media-editor/internal/repository/variant"
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
)

// service defines the interface for variant operations.
type service interface {
	ListVariants(ctx context.Context, assetID uuid.UUID) ([]model.MediaVariant, error)
	CreateVariant(ctx context.Context, assetID uuid.UUID, variantType, details string) (uuid.UUID, error)
	UpdateVariant(ctx context.Context, id, assetID uuid.UUID, variantType, details string) error
}

// Handler provides HTTP handlers for variant endpoints.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// List returns the variants of the asset in the path.
func (h *Handler) List(c *ginext.Context) {
	assetID, ok := pathID(c)
	if !ok {
		return
	}

	variants, err := h.service.ListVariants(c.Request.Context(), assetID)
	if err != nil {
		fail(c, "failed to list variants", err)
		return
	}

	if variants == nil {
		variants = []model.MediaVariant{}
	}

	respond.OK(c, dto.VariantsResponse{Envelope: respond.Success(), Variants: variants})
}

// Create saves a new variant of the asset in the path.
func (h *Handler) Create(c *ginext.Context) {
	assetID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.SaveVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.MediaAssetID != uuid.Nil && req.MediaAssetID != assetID {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("media_asset_id does not match the path"))
		return
	}

	id, err := h.service.CreateVariant(c.Request.Context(), assetID, req.VariantType, req.VariantDetails)
	if err != nil {
		fail(c, "failed to create variant", err)
		return
	}

	zlog.Logger.Info().
		Str("asset_id", assetID.String()).
		Str("variant_id", id.String()).
		Msg("variant created")

	respond.Created(c, dto.VariantIDResponse{Envelope: respond.Success(), VariantID: id})
}

// Update overwrites the variant in the path.
func (h *Handler) Update(c *ginext.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.VariantID != uuid.Nil && req.VariantID != id {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("variant_id does not match the path"))
		return
	}
	if req.MediaAssetID == uuid.Nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("media_asset_id is required"))
		return
	}

	if err := h.service.UpdateVariant(c.Request.Context(), id, req.MediaAssetID, req.VariantType, req.VariantDetails); err != nil {
		fail(c, "failed to update variant", err)
		return
	}

	respond.OK(c, dto.VariantIDResponse{Envelope: respond.Success(), VariantID: id})
}

func pathID(c *ginext.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %q", c.Param("id")))
		return uuid.Nil, false
	}

	return id, true
}

func fail(c *ginext.Context, msg string, err error) {
	switch {
	case errors.Is(err, variantrepo.ErrVariantNotFound), errors.Is(err, mediarepo.ErrMediaNotFound):
		zlog.Logger.Warn().Err(err).Msg(msg)
		respond.Fail(c, http.StatusNotFound, err)
	case errors.Is(err, mediasvc.ErrInvalidInput):
		zlog.Logger.Warn().Err(err).Msg(msg)
		respond.Fail(c, http.StatusBadRequest, err)
	default:
		zlog.Logger.Err(err).Msg(msg)
		respond.Fail(c, http.StatusInternalServerError, errors.New(msg))
	}
}
