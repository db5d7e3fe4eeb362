// Package editor is the editing session state machine: it opens one image at
// a time, keeps the live crop and filter state, and turns user commands into
// persistence calls.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/media-editor/internal/compositor"
	"github.com/aliskhannn/media-editor/internal/gateway"
	"github.com/aliskhannn/media-editor/internal/model"
	"github.com/aliskhannn/media-editor/internal/preset"
)

// Gateway persists assets, variants and presets.
type Gateway interface {
	ListVariants(ctx context.Context, assetID uuid.UUID) ([]model.MediaVariant, error)
	CreateVariant(ctx context.Context, assetID uuid.UUID, variantType string, details model.VariantDetails) (uuid.UUID, error)
	UpdateVariant(ctx context.Context, v model.MediaVariant) (uuid.UUID, error)
	UpdateAssetDetails(ctx context.Context, id uuid.UUID, d model.AssetDetails) error
	CreateVirtualMaster(ctx context.Context, r model.VirtualMasterRequest) (model.MediaAsset, error)
	ListPresets(ctx context.Context) ([]model.Preset, error)
	ReorderPresets(ctx context.Context, ids []uuid.UUID) error
}

// Loader fetches and decodes a bitmap.
type Loader interface {
	Load(ctx context.Context, location string) (image.Image, error)
}

// Surface is the interactive crop surface. Load(nil) clears it.
type Surface interface {
	Load(img image.Image)
	Image() image.Image
	Dimensions() (int, int)
	CropBox() model.CropRectangle
	SetCropBox(r model.CropRectangle)
	ResizeCropBox(width, height float64)
	Zoom() float64
	SetZoom(z float64)
	Position() image.Point
	SetPosition(p image.Point)
	LockAspectRatio(ratio float64)
	UnlockAspectRatio()
	AspectRatio() (float64, bool)
}

// Config tunes thumbnail sizes and generated names.
type Config struct {
	ThumbnailWidth     int
	ThumbnailHeight    int
	DefaultVariantType string
	CopySuffix         string
}

func (c Config) withDefaults() Config {
	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = 160
	}
	if c.ThumbnailHeight <= 0 {
		c.ThumbnailHeight = 120
	}
	if c.DefaultVariantType == "" {
		c.DefaultVariantType = "Variant"
	}
	if c.CopySuffix == "" {
		c.CopySuffix = " (copy)"
	}

	return c
}

// Editor owns at most one session at a time. It is safe for concurrent use:
// network calls run without the lock held and their results are discarded
// when the session they belong to is no longer current.
type Editor struct {
	gw       Gateway
	loader   Loader
	surface  Surface
	notifier Notifier
	cfg      Config

	mu  sync.Mutex
	cur *session
}

// New creates an Editor. notifier may be nil.
func New(gw Gateway, loader Loader, surface Surface, notifier Notifier, cfg Config) *Editor {
	return &Editor{
		gw:       gw,
		loader:   loader,
		surface:  surface,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
	}
}

// State returns the current lifecycle stage.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur == nil {
		return StateClosed
	}

	return e.cur.state
}

// Open tears down any open session and opens req.Asset. It returns once the
// bitmap is decoded and both the variant list and the preset catalog have
// been fetched.
func (e *Editor) Open(ctx context.Context, req OpenRequest) error {
	if req.Asset.ID == uuid.Nil || req.PhysicalURL == "" {
		return e.report("open", fmt.Errorf("%w: asset id and image location are required", ErrInvalidInput))
	}

	s := newSession(req)

	e.mu.Lock()
	prev := e.detach()
	e.cur = s
	e.mu.Unlock()

	if prev != nil && prev.req.OnClose != nil {
		prev.req.OnClose()
	}

	return e.load(ctx, s)
}

// load runs the open sequence for s: decode, bake, fetch lists, hand the
// image to the surface.
func (e *Editor) load(ctx context.Context, s *session) error {
	physical, err := e.loader.Load(ctx, s.req.PhysicalURL)
	if err == nil {
		if b := physical.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
			err = gateway.ErrEmptyImage
		}
	}
	if err != nil {
		e.abort(s, err)
		return fmt.Errorf("open: %w: %w", ErrLoadFailed, err)
	}

	effective := physical
	if !s.asset.IsPhysical() && s.asset.HasOwnTransform() {
		effective = compositor.RenderVirtualMasterBitmap(physical, s.asset.DefaultCrop, s.asset.FilterState)
	}

	var (
		variants   []model.MediaVariant
		catalog    *preset.Catalog
		variantErr error
		presetErr  error
	)

	// Both lists are optional; errors are kept per fetch and never cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		variants, variantErr = e.gw.ListVariants(ctx, s.asset.ID)
		return nil
	})
	g.Go(func() error {
		catalog, presetErr = preset.Load(ctx, e.gw)
		return nil
	})
	g.Wait()

	if variantErr != nil {
		variants = nil
		zlog.Logger.Error().Err(variantErr).Str("asset_id", s.asset.ID.String()).Msg("failed to fetch variants")
		e.notify(LevelError, "Could not load variants: "+variantErr.Error())
	}
	if presetErr != nil {
		catalog = preset.Empty(e.gw)
		zlog.Logger.Error().Err(presetErr).Msg("failed to fetch presets")
		e.notify(LevelError, "Could not load presets: "+presetErr.Error())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur != s {
		return fmt.Errorf("open: %w", ErrSessionClosed)
	}

	s.physical = physical
	s.effective = effective
	s.variants = variants
	s.presets = catalog

	if v, ok := s.findVariant(s.req.TargetVariantID); s.req.TargetVariantID != uuid.Nil && ok {
		e.enterVariant(s, v)
	} else {
		e.surface.Load(effective)
		s.state = StateEditingMaster
	}

	zlog.Logger.Info().
		Str("asset_id", s.asset.ID.String()).
		Bool("physical", s.asset.IsPhysical()).
		Str("state", s.state.String()).
		Int("variants", len(variants)).
		Msg("editor session opened")

	return nil
}

// abort closes s after a failed load.
func (e *Editor) abort(s *session, cause error) {
	e.mu.Lock()
	current := e.cur == s
	if current {
		e.detach()
	}
	e.mu.Unlock()

	if !current {
		return
	}

	zlog.Logger.Error().Err(cause).Str("asset_id", s.asset.ID.String()).Msg("failed to load image")
	e.notify(LevelError, "Failed to load image: "+cause.Error())

	if s.req.OnClose != nil {
		s.req.OnClose()
	}
}

// Close tears down the open session and invokes its OnClose. Closing an
// already closed editor is a no-op.
func (e *Editor) Close() {
	e.mu.Lock()
	s := e.detach()
	e.mu.Unlock()

	if s == nil {
		return
	}

	zlog.Logger.Info().Str("asset_id", s.asset.ID.String()).Msg("editor session closed")

	if s.req.OnClose != nil {
		s.req.OnClose()
	}
}

// detach drops the current session and returns it. Callers hold e.mu.
func (e *Editor) detach() *session {
	s := e.cur
	if s == nil {
		return nil
	}

	e.cur = nil
	s.release()
	e.surface.Load(nil)

	return s
}

// editing returns the current session when it is in one of the allowed
// states. Callers hold e.mu.
func (e *Editor) editing(allowed ...State) (*session, error) {
	s := e.cur
	if s == nil || !s.state.editing() {
		return nil, ErrNoSession
	}
	if len(allowed) > 0 && !slices.Contains(allowed, s.state) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}

	return s, nil
}

// begin checks the session state, runs prepare under the lock and marks a
// in flight. prepare snapshots whatever the network call needs.
func (e *Editor) begin(a Action, prepare func(s *session) error, allowed ...State) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.editing(allowed...)
	if err != nil {
		return nil, err
	}
	if s.inflight[a] {
		return nil, ErrInProgress
	}
	if prepare != nil {
		if err := prepare(s); err != nil {
			return nil, err
		}
	}

	s.inflight[a] = true

	return s, nil
}

// settle clears the in-flight mark of a and reports whether s is still the
// open session. On true the lock is held and the caller must unlock it.
func (e *Editor) settle(s *session, a Action) bool {
	e.mu.Lock()
	delete(s.inflight, a)

	if e.cur != s {
		e.mu.Unlock()
		return false
	}

	return true
}

func (e *Editor) enterMaster(s *session) {
	if !s.asset.IsPhysical() && s.asset.HasOwnTransform() {
		s.effective = compositor.RenderVirtualMasterBitmap(s.physical, s.asset.DefaultCrop, s.asset.FilterState)
	}

	e.surface.Load(s.effective)
	s.state = StateEditingMaster
	s.variantID = uuid.Nil
	s.selection++
	s.filters = model.NeutralFilters()
	s.caption = ""
	s.altText = ""
}

func (e *Editor) enterVariant(s *session, v model.MediaVariant) {
	e.surface.Load(s.effective)
	e.surface.SetCropBox(v.Details.Crop)

	s.state = StateEditingVariant
	s.variantID = v.ID
	s.selection++
	s.filters = v.Details.Filters
	s.caption = v.Details.Caption
	s.altText = v.Details.AltText
}

// liveDetails reads the variant payload from the surface and sliders.
// Callers hold e.mu.
func (e *Editor) liveDetails(s *session) model.VariantDetails {
	return model.VariantDetails{
		Crop:    e.surface.CropBox().Round(),
		Filters: s.filters,
		Caption: s.caption,
		AltText: s.altText,
	}
}

func (e *Editor) notify(level Level, msg string) {
	if e.notifier != nil {
		e.notifier.Notify(level, msg)
	}
}

// report notifies the user about err according to its kind and returns it
// wrapped with op. Dropped duplicates and stale responses stay silent.
func (e *Editor) report(op string, err error) error {
	switch {
	case errors.Is(err, ErrInProgress), errors.Is(err, ErrSessionClosed):
	case errors.Is(err, ErrVariantNotFound):
		e.notify(LevelError, "The variant no longer exists. Save it as a new variant instead.")
	case errors.Is(err, ErrNoSession),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNotAllowed),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrPresetNotFound),
		errors.Is(err, model.ErrInvalidFilter),
		errors.Is(err, model.ErrInvalidAspectRatio),
		errors.Is(err, preset.ErrInvalidOrder):
		e.notify(LevelWarning, op+": "+err.Error())
	default:
		zlog.Logger.Error().Err(err).Str("op", op).Msg("editor operation failed")
		e.notify(LevelError, op+" failed: "+err.Error())
	}

	return fmt.Errorf("%s: %w", op, err)
}
