package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/model"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	"github.com/aliskhannn/media-editor/internal/storage/file"
)

const originalDir = "original"

// Upload is a new physical file with its metadata.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Details     model.AssetDetails
}

// FileURL is the address the API serves the pixels of asset id from.
func FileURL(id uuid.UUID) string {
	return "/api/media/" + id.String() + "/file"
}

func withURL(a model.MediaAsset) model.MediaAsset {
	a.ImageURL = FileURL(a.ID)
	return a
}

// UploadAsset stores a new physical asset. A file whose content hash is
// already known returns the existing asset and created=false.
func (s *Service) UploadAsset(ctx context.Context, u Upload) (model.MediaAsset, bool, error) {
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return model.MediaAsset{}, false, fmt.Errorf("upload: failed to read file: %w", err)
	}
	if len(data) == 0 {
		return model.MediaAsset{}, false, fmt.Errorf("upload: %w: empty file", ErrInvalidInput)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.media.GetByHash(ctx, hash)
	switch {
	case err == nil:
		return withURL(existing), false, nil
	case !errors.Is(err, mediarepo.ErrMediaNotFound):
		return model.MediaAsset{}, false, fmt.Errorf("upload: failed to look up hash: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return model.MediaAsset{}, false, fmt.Errorf("upload: %w: not a decodable image: %v", ErrInvalidInput, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return model.MediaAsset{}, false, fmt.Errorf("upload: %w: image has zero dimensions", ErrInvalidInput)
	}

	contentType := u.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	dst, err := s.storage.Save(ctx, originalDir, hash+strings.ToLower(path.Ext(u.Filename)), bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return model.MediaAsset{}, false, fmt.Errorf("upload: failed to save file: %w", err)
	}

	details := u.Details
	if details.AdminTitle == "" {
		details.AdminTitle = strings.TrimSuffix(path.Base(u.Filename), path.Ext(u.Filename))
	}

	asset := model.MediaAsset{
		FilePath: dst,
		FileHash: hash,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}.WithDetails(details)

	created, err := s.media.Create(ctx, asset)
	if err != nil {
		return model.MediaAsset{}, false, fmt.Errorf("upload: failed to save asset: %w", err)
	}

	zlog.Logger.Info().
		Str("asset_id", created.ID.String()).
		Str("path", dst).
		Int("width", created.Width).
		Int("height", created.Height).
		Msg("asset uploaded")

	s.publish(ctx, model.NewEvent(model.EventAssetUploaded, &created.ID, nil, created.AdminTitle))

	return withURL(created), true, nil
}

// GetAsset returns one asset.
func (s *Service) GetAsset(ctx context.Context, id uuid.UUID) (model.MediaAsset, error) {
	a, err := s.media.Get(ctx, id)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("get asset: %w", err)
	}

	return withURL(a), nil
}

// ListAssets returns a page of assets and the total number of matches.
func (s *Service) ListAssets(ctx context.Context, f mediarepo.Filter) ([]model.MediaAsset, int, error) {
	assets, total, err := s.media.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	for i := range assets {
		assets[i] = withURL(assets[i])
	}

	return assets, total, nil
}

// OpenFile opens the physical file behind an asset. Virtual masters share
// the file of their physical ancestor.
func (s *Service) OpenFile(ctx context.Context, id uuid.UUID) (file.Object, error) {
	a, err := s.media.Get(ctx, id)
	if err != nil {
		return file.Object{}, fmt.Errorf("open file: %w", err)
	}

	obj, err := s.storage.Load(ctx, a.FilePath)
	if err != nil {
		return file.Object{}, fmt.Errorf("open file: %w", err)
	}

	return obj, nil
}

// UpdateDetails changes the non-pixel metadata of an asset.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, d model.AssetDetails) error {
	if err := s.media.UpdateDetails(ctx, id, d); err != nil {
		return fmt.Errorf("update details: %w", err)
	}

	s.publish(ctx, model.NewEvent(model.EventAssetDetailsUpdated, &id, nil, d.AdminTitle))

	return nil
}

// CreateVirtualMaster creates an asset that reuses the file of a physical
// source with its own default crop and filters. A zero crop covers the
// whole source.
func (s *Service) CreateVirtualMaster(ctx context.Context, r model.VirtualMasterRequest) (model.MediaAsset, error) {
	src, err := s.media.Get(ctx, r.SourceMediaAssetID)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: %w", err)
	}
	if !src.IsPhysical() {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: %w", ErrNotPhysical)
	}

	crop := r.Crop
	if crop == (model.CropRectangle{}) {
		crop = model.FullCrop(src.Width, src.Height)
	}
	if err := validateCrop(crop, src.Width, src.Height); err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: %w", err)
	}
	if err := r.Filters.Validate(); err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: %w: %v", ErrInvalidInput, err)
	}

	filters := r.Filters
	asset := model.MediaAsset{
		FilePath:              src.FilePath,
		Width:                 int(math.Round(crop.Width)),
		Height:                int(math.Round(crop.Height)),
		DefaultCrop:           &crop,
		FilterState:           &filters,
		PhysicalSourceAssetID: &src.ID,
	}.WithDetails(r.Details)

	created, err := s.media.Create(ctx, asset)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: %w", err)
	}

	zlog.Logger.Info().
		Str("asset_id", created.ID.String()).
		Str("source_id", src.ID.String()).
		Msg("virtual master created")

	s.publish(ctx, model.NewEvent(model.EventVirtualCreated, &created.ID, nil, "from "+src.ID.String()))

	return withURL(created), nil
}

// validateCrop checks that crop has a positive area inside a w×h bitmap.
// Half a pixel of slack absorbs rounding on the client.
func validateCrop(crop model.CropRectangle, w, h int) error {
	if !crop.Valid() {
		return fmt.Errorf("%w: crop must have a positive size", ErrInvalidInput)
	}
	if crop.X < 0 || crop.Y < 0 {
		return fmt.Errorf("%w: crop offset must not be negative", ErrInvalidInput)
	}
	if w > 0 && h > 0 && (crop.X+crop.Width > float64(w)+0.5 || crop.Y+crop.Height > float64(h)+0.5) {
		return fmt.Errorf("%w: crop exceeds %dx%d", ErrInvalidInput, w, h)
	}

	return nil
}
