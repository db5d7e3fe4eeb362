package preset

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
	presetrepo "github.com/aliskhannn/media-editor/internal/repository/preset"
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
)

type service interface {
	ListPresets(ctx context.Context) ([]model.Preset, error)
	ReorderPresets(ctx context.Context, ids []uuid.UUID) error
}

// Handler serves the preset catalog.
type Handler struct {
	service service
}

func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// List returns presets in display order.
func (h *Handler) List(c *ginext.Context) {
	presets, err := h.service.ListPresets(c.Request.Context())
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to list presets")
		respond.Fail(c, http.StatusInternalServerError, errors.New("failed to list presets"))
		return
	}

	if presets == nil {
		presets = []model.Preset{}
	}

	respond.OK(c, dto.PresetsResponse{Envelope: respond.Success(), Presets: presets})
}

// Reorder stores a new display order.
func (h *Handler) Reorder(c *ginext.Context) {
	var req dto.ReorderPresetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	err := h.service.ReorderPresets(c.Request.Context(), req.IDs)
	switch {
	case err == nil:
		respond.OK(c, respond.Success())
	case errors.Is(err, presetrepo.ErrPresetNotFound):
		respond.Fail(c, http.StatusNotFound, err)
	case errors.Is(err, mediasvc.ErrInvalidInput):
		respond.Fail(c, http.StatusBadRequest, err)
	default:
		zlog.Logger.Err(err).Msg("failed to reorder presets")
		respond.Fail(c, http.StatusInternalServerError, errors.New("failed to reorder presets"))
	}
}
