package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/api/dto"
	"github.com/aliskhannn/media-editor/internal/api/respond"
	"github.com/aliskhannn/media-editor/internal/model"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
	"github.com/aliskhannn/media-editor/internal/storage/file"
)

const defaultEventLimit = 50

// service defines the interface for asset-related operations.
type service interface {
	UploadAsset(ctx context.Context, u mediasvc.Upload) (model.MediaAsset, bool, error)
	GetAsset(ctx context.Context, id uuid.UUID) (model.MediaAsset, error)
	ListAssets(ctx context.Context, f mediarepo.Filter) ([]model.MediaAsset, int, error)
	OpenFile(ctx context.Context, id uuid.UUID) (file.Object, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, d model.AssetDetails) error
	CreateVirtualMaster(ctx context.Context, r model.VirtualMasterRequest) (model.MediaAsset, error)
	ListEvents(ctx context.Context, assetID uuid.UUID, limit int) ([]model.MediaEvent, error)
}

// Handler provides HTTP handlers for media asset endpoints.
type Handler struct {
	service  service
	maxBytes int64
}

// NewHandler creates a new Handler. maxBytes limits uploaded files.
func NewHandler(s service, maxBytes int64) *Handler {
	return &Handler{service: s, maxBytes: maxBytes}
}

// List returns a page of assets filtered by ?q=, ?physical=, ?limit= and ?offset=.
func (h *Handler) List(c *ginext.Context) {
	var f mediarepo.Filter
	f.Query = c.Query("q")

	var err error
	if v := c.Query("physical"); v != "" {
		if f.PhysicalOnly, err = strconv.ParseBool(v); err != nil {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid physical: %q", v))
			return
		}
	}
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	assets, total, err := h.service.ListAssets(c.Request.Context(), f)
	if err != nil {
		fail(c, "failed to list assets", err)
		return
	}

	if assets == nil {
		assets = []model.MediaAsset{}
	}

	respond.OK(c, dto.MediaListResponse{Envelope: respond.Success(), Media: assets, Total: total})
}

// Upload stores the multipart "image" file as a new physical asset.
// A file already known by content answers 200 with the existing asset.
func (h *Handler) Upload(c *ginext.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	f, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d bytes", tooLarge.Limit))
			return
		}
		zlog.Logger.Err(err).Msg("failed to read the uploaded file")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("image file is required"))
		return
	}
	defer f.Close()

	zlog.Logger.Info().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Msg("upload received")

	asset, created, err := h.service.UploadAsset(c.Request.Context(), mediasvc.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
		Details: model.AssetDetails{
			AdminTitle:    c.PostForm("admin_title"),
			PublicCaption: c.PostForm("public_caption"),
			AltText:       c.PostForm("alt_text"),
			SourceURL:     c.PostForm("source_url"),
			Attribution:   c.PostForm("attribution"),
		},
	})
	if err != nil {
		fail(c, "failed to upload asset", err)
		return
	}

	resp := dto.MediaResponse{Envelope: respond.Success(), Media: asset}
	if created {
		respond.Created(c, resp)
		return
	}

	respond.OK(c, resp)
}

// Get returns one asset record.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	asset, err := h.service.GetAsset(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to get asset", err)
		return
	}

	respond.OK(c, dto.MediaResponse{Envelope: respond.Success(), Media: asset})
}

// File streams the pixels of an asset.
func (h *Handler) File(c *ginext.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	obj, err := h.service.OpenFile(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to open file", err)
		return
	}
	defer obj.Close()

	// Originals are content-addressed and never change.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")

	respond.Stream(c, http.StatusOK, obj.ContentType, obj.Size, obj)
}

// UpdateDetails changes title, caption, alt text, source and attribution.
func (h *Handler) UpdateDetails(c *ginext.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.MediaAssetID != uuid.Nil && req.MediaAssetID != id {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("media_asset_id does not match the path"))
		return
	}

	if err := h.service.UpdateDetails(c.Request.Context(), id, req.AssetDetails); err != nil {
		fail(c, "failed to update details", err)
		return
	}

	respond.OK(c, respond.Success())
}

// CreateVirtual saves a virtual master derived from a physical asset.
func (h *Handler) CreateVirtual(c *ginext.Context) {
	var req dto.CreateVirtualMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.SourceMediaAssetID == uuid.Nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("source_media_asset_id is required"))
		return
	}

	crop, err := model.DecodeNullableCrop(req.CurrentCropJSON)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}
	filters, err := model.DecodeNullableFilters(req.CurrentFiltersJSON)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	r := model.VirtualMasterRequest{
		SourceMediaAssetID: req.SourceMediaAssetID,
		Filters:            model.NeutralFilters(),
		Details: model.AssetDetails{
			AdminTitle:    req.NewAdminTitle,
			PublicCaption: req.NewPublicCaption,
			AltText:       req.NewAltText,
			SourceURL:     req.NewSourceURL,
			Attribution:   req.NewAttribution,
		},
	}
	if crop != nil {
		r.Crop = *crop
	}
	if filters != nil {
		r.Filters = *filters
	}

	asset, err := h.service.CreateVirtualMaster(c.Request.Context(), r)
	if err != nil {
		fail(c, "failed to create virtual master", err)
		return
	}

	respond.Created(c, dto.MediaResponse{Envelope: respond.Success(), Media: asset})
}

// Events returns the audit log of an asset, newest first.
func (h *Handler) Events(c *ginext.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit, err := intQuery(c, "limit")
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}
	if limit == 0 {
		limit = defaultEventLimit
	}

	events, err := h.service.ListEvents(c.Request.Context(), id, limit)
	if err != nil {
		fail(c, "failed to list events", err)
		return
	}

	if events == nil {
		events = []model.MediaEvent{}
	}

	respond.OK(c, dto.EventsResponse{Envelope: respond.Success(), Events: events})
}

func pathID(c *ginext.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		zlog.Logger.Warn().Str("id", c.Param("id")).Msg("invalid asset id")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %q", c.Param("id")))
		return uuid.Nil, false
	}

	return id, true
}

func intQuery(c *ginext.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}

	return n, nil
}

// fail maps service errors to statuses.
func fail(c *ginext.Context, msg string, err error) {
	switch {
	case errors.Is(err, mediarepo.ErrMediaNotFound), errors.Is(err, file.ErrObjectNotFound):
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
