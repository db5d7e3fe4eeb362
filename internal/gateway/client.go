// Package gateway talks to the media API on behalf of the editor.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/api/dto"
	"github.com/aliskhannn/media-editor/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrRequestFailed = errors.New("request failed")
)

const maxErrorBody = 4 << 10

// Client is a JSON-over-HTTP client for the media API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PhysicalFileURL is the API path serving the pixels of the physical
// ancestor of a.
func PhysicalFileURL(a model.MediaAsset) string {
	return "/api/media/" + a.PhysicalAncestorID().String() + "/file"
}

// AssetFilter narrows ListAssets.
type AssetFilter struct {
	Query        string
	PhysicalOnly bool
	Limit        int
	Offset       int
}

// GetAsset fetches one asset record.
func (c *Client) GetAsset(ctx context.Context, id uuid.UUID) (model.MediaAsset, error) {
	var resp dto.MediaResponse
	if err := c.do(ctx, http.MethodGet, "/api/media/"+id.String(), nil, &resp); err != nil {
		return model.MediaAsset{}, fmt.Errorf("get asset: %w", err)
	}

	return resp.Media, nil
}

// ListAssets lists asset records.
func (c *Client) ListAssets(ctx context.Context, f AssetFilter) ([]model.MediaAsset, int, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.PhysicalOnly {
		q.Set("physical", "true")
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}

	path := "/api/media"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp dto.MediaListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	return resp.Media, resp.Total, nil
}

// ListVariants fetches the variants of a master asset.
func (c *Client) ListVariants(ctx context.Context, assetID uuid.UUID) ([]model.MediaVariant, error) {
	var resp dto.VariantsResponse
	if err := c.do(ctx, http.MethodGet, "/api/media/"+assetID.String()+"/variants", nil, &resp); err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	return resp.Variants, nil
}

// CreateVariant saves a new variant under assetID and returns its id.
func (c *Client) CreateVariant(ctx context.Context, assetID uuid.UUID, variantType string, details model.VariantDetails) (uuid.UUID, error) {
	encoded, err := details.Encode()
	if err != nil {
		return uuid.Nil, fmt.Errorf("create variant: %w", err)
	}

	req := dto.SaveVariantRequest{
		MediaAssetID:   assetID,
		VariantType:    variantType,
		VariantDetails: encoded,
	}

	var resp dto.VariantIDResponse
	if err := c.do(ctx, http.MethodPost, "/api/media/"+assetID.String()+"/variants", req, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("create variant: %w", err)
	}

	return resp.VariantID, nil
}

// UpdateVariant overwrites the variant v.ID. A vanished variant yields ErrNotFound.
func (c *Client) UpdateVariant(ctx context.Context, v model.MediaVariant) (uuid.UUID, error) {
	encoded, err := v.Details.Encode()
	if err != nil {
		return uuid.Nil, fmt.Errorf("update variant: %w", err)
	}

	req := dto.UpdateVariantRequest{
		VariantID:      v.ID,
		MediaAssetID:   v.MediaAssetID,
		VariantType:    v.VariantType,
		VariantDetails: encoded,
	}

	var resp dto.VariantIDResponse
	if err := c.do(ctx, http.MethodPut, "/api/variants/"+v.ID.String(), req, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("update variant: %w", err)
	}

	return resp.VariantID, nil
}

// UpdateAssetDetails persists title, caption, alt text, source and attribution.
func (c *Client) UpdateAssetDetails(ctx context.Context, id uuid.UUID, d model.AssetDetails) error {
	req := dto.UpdateDetailsRequest{MediaAssetID: id, AssetDetails: d}

	var resp dto.Envelope
	if err := c.do(ctx, http.MethodPut, "/api/media/"+id.String()+"/details", req, &resp); err != nil {
		return fmt.Errorf("update asset details: %w", err)
	}

	return nil
}

// CreateVirtualMaster persists a virtual master derived from a physical asset.
func (c *Client) CreateVirtualMaster(ctx context.Context, r model.VirtualMasterRequest) (model.MediaAsset, error) {
	crop, err := json.Marshal(r.Crop)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: encode crop: %w", err)
	}
	filters, err := json.Marshal(r.Filters)
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: encode filters: %w", err)
	}

	req := dto.CreateVirtualMasterRequest{
		SourceMediaAssetID: r.SourceMediaAssetID,
		CurrentCropJSON:    string(crop),
		CurrentFiltersJSON: string(filters),
		NewAdminTitle:      r.Details.AdminTitle,
		NewPublicCaption:   r.Details.PublicCaption,
		NewAltText:         r.Details.AltText,
		NewSourceURL:       r.Details.SourceURL,
		NewAttribution:     r.Details.Attribution,
	}

	var resp dto.MediaResponse
	if err := c.do(ctx, http.MethodPost, "/api/media/virtual", req, &resp); err != nil {
		return model.MediaAsset{}, fmt.Errorf("create virtual master: %w", err)
	}

	return resp.Media, nil
}

// ListPresets fetches the ordered preset catalog.
func (c *Client) ListPresets(ctx context.Context) ([]model.Preset, error) {
	var resp dto.PresetsResponse
	if err := c.do(ctx, http.MethodGet, "/api/presets", nil, &resp); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	return resp.Presets, nil
}

// ReorderPresets persists a new order of preset ids.
func (c *Client) ReorderPresets(ctx context.Context, ids []uuid.UUID) error {
	var resp dto.Envelope
	if err := c.do(ctx, http.MethodPut, "/api/presets/order", dto.ReorderPresetsRequest{IDs: ids}, &resp); err != nil {
		return fmt.Errorf("reorder presets: %w", err)
	}

	return nil
}

// do sends body as JSON and decodes the response into out. Non-2xx statuses
// and {"success": false} bodies become errors; 404 maps to ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(raw)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, msg)
	}

	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decode envelope: %w", ErrRequestFailed, err)
	}
	if !env.Success {
		return fmt.Errorf("%w: %s", ErrRequestFailed, env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
		}
	}

	return nil
}

func errorMessage(raw []byte) string {
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}

	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}

	return strings.TrimSpace(string(raw))
}
