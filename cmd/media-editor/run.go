package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/compositor"
	"github.com/aliskhannn/media-editor/internal/config"
	"github.com/aliskhannn/media-editor/internal/cropsurface"
	"github.com/aliskhannn/media-editor/internal/editor"
	"github.com/aliskhannn/media-editor/internal/gateway"
	"github.com/aliskhannn/media-editor/internal/model"
)

// summary is printed for the preview action.
type summary struct {
	State     string              `json:"state"`
	AssetID   uuid.UUID           `json:"asset_id"`
	VariantID *uuid.UUID          `json:"variant_id,omitempty"`
	Crop      model.CropRectangle `json:"crop"`
	Filters   model.FilterState   `json:"filters"`
	Caption   string              `json:"caption,omitempty"`
	AltText   string              `json:"alt_text,omitempty"`
	Variants  int                 `json:"variants"`
	Presets   int                 `json:"presets"`
}

func run(ctx context.Context, cfg *config.Config, o *options) (any, error) {
	client := gateway.New(cfg.Editor.GatewayURL, cfg.Editor.Timeout)

	asset, err := client.GetAsset(ctx, o.asset)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w", o.asset, err)
	}

	ed := editor.New(
		client,
		gateway.NewLoader(client.BaseURL(), cfg.Editor.Timeout),
		cropsurface.New(),
		editor.LogNotifier{},
		editor.Config{
			ThumbnailWidth:  cfg.Editor.ThumbnailWidth,
			ThumbnailHeight: cfg.Editor.ThumbnailHeight,
		},
	)
	defer ed.Close()

	err = ed.Open(ctx, editor.OpenRequest{
		PhysicalURL:     gateway.PhysicalFileURL(asset),
		Asset:           asset,
		TargetVariantID: o.variant,
		ContextLabel:    o.contextLabel,
		OnSave: func(r editor.SaveResult) {
			zlog.Logger.Info().
				Str("action", string(r.Action)).
				Str("asset_id", r.Asset.ID.String()).
				Msg("saved")
		},
		OnClose: func() {
			zlog.Logger.Debug().Msg("editor closed")
		},
	})
	if err != nil {
		return nil, err
	}

	if o.variant != uuid.Nil && ed.State() != editor.StateEditingVariant {
		zlog.Logger.Warn().Str("variant_id", o.variant.String()).Msg("variant not found, editing the master")
	}

	if err := apply(ed, o); err != nil {
		return nil, err
	}

	if o.out != "" {
		if err := writePreview(ed, o.out); err != nil {
			return nil, err
		}
	}
	if o.thumbs != "" {
		if err := writeThumbnails(ed, o.thumbs); err != nil {
			return nil, err
		}
	}

	return act(ctx, ed, o)
}

// apply replays the command-line adjustments on the open session.
func apply(ed *editor.Editor, o *options) error {
	for _, r := range o.resets {
		if err := ed.Reset(editor.ResetTarget(r)); err != nil {
			return err
		}
	}

	snap, err := ed.Snapshot()
	if err != nil {
		return err
	}

	if o.preset != "" {
		p, ok := findPreset(snap.Presets, o.preset)
		if !ok {
			return fmt.Errorf("preset %q not found", o.preset)
		}
		if err := ed.ApplyPreset(p.ID); err != nil {
			return err
		}
		if snap, err = ed.Snapshot(); err != nil {
			return err
		}
	}

	if o.crop != nil {
		if err := ed.SetCrop(*o.crop); err != nil {
			return err
		}
	}
	if o.changed["zoom"] {
		if err := ed.SetZoom(o.zoom); err != nil {
			return err
		}
	}

	if len(o.sliders) > 0 {
		if err := ed.SetFilters(applySliders(snap.Filters, o.sliders)); err != nil {
			return err
		}
	}

	if o.changed["caption"] {
		if err := ed.SetCaption(o.caption); err != nil {
			return err
		}
	}
	if o.changed["alt"] {
		if err := ed.SetAltText(o.altText); err != nil {
			return err
		}
	}

	// Asset captions are only written by the actions that save master details.
	d := snap.Details
	assetTexts := o.action == actionSaveDetails || o.action == actionSaveNewImage
	if o.changed["title"] {
		d.AdminTitle = o.title
	}
	if o.changed["source-url"] {
		d.SourceURL = o.sourceURL
	}
	if o.changed["attribution"] {
		d.Attribution = o.attribution
	}
	if assetTexts && o.changed["caption"] {
		d.PublicCaption = o.caption
	}
	if assetTexts && o.changed["alt"] {
		d.AltText = o.altText
	}
	if d != snap.Details {
		if err := ed.SetDetails(d); err != nil {
			return err
		}
	}

	return nil
}

func act(ctx context.Context, ed *editor.Editor, o *options) (any, error) {
	switch o.action {
	case actionSaveVariant:
		return ed.SaveAsVariant(ctx, o.variantType)
	case actionUpdateVariant:
		return ed.UpdateVariant(ctx)
	case actionFork:
		return ed.ForkVariant(ctx)
	case actionSaveNewImage:
		return ed.SaveAsNewImage(ctx)
	case actionSaveDetails:
		return ed.SaveMasterDetails(ctx)
	case actionUseFor:
		return ed.UseForContext(ctx)
	}

	snap, err := ed.Snapshot()
	if err != nil {
		return nil, err
	}

	s := summary{
		State:    snap.State.String(),
		AssetID:  snap.Asset.ID,
		Crop:     snap.Crop,
		Filters:  snap.Filters,
		Caption:  snap.Caption,
		AltText:  snap.AltText,
		Variants: len(snap.Variants),
		Presets:  len(snap.Presets),
	}
	if snap.VariantID != uuid.Nil {
		s.VariantID = &snap.VariantID
	}

	return s, nil
}

func findPreset(presets []model.Preset, name string) (model.Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			return p, true
		}
	}

	return model.Preset{}, false
}

func writePreview(ed *editor.Editor, path string) error {
	img, err := ed.Preview()
	if err != nil {
		return err
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("preview %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: failed to create file: %w", err)
	}

	if err := compositor.Encode(f, img, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("preview: failed to encode: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("preview: failed to close file: %w", err)
	}

	zlog.Logger.Info().Str("path", path).Msg("preview written")

	return nil
}

func writeThumbnails(ed *editor.Editor, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("thumbnails: failed to create directory: %w", err)
	}

	variants, err := ed.VariantThumbnails()
	if err != nil {
		return err
	}
	for _, t := range variants {
		name := fmt.Sprintf("variant-%s-%s.png", slug(t.Variant.VariantType), t.Variant.ID.String()[:8])
		if err := imaging.Save(t.Image, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("thumbnails: %w", err)
		}
	}

	presets, err := ed.PresetThumbnails()
	if err != nil {
		return err
	}
	for _, t := range presets {
		name := fmt.Sprintf("preset-%s-%s.png", t.Preset.Type, slug(t.Preset.Name))
		if err := imaging.Save(t.Image, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("thumbnails: %w", err)
		}
	}

	zlog.Logger.Info().
		Int("variants", len(variants)).
		Int("presets", len(presets)).
		Str("dir", dir).
		Msg("thumbnails written")

	return nil
}

// slug turns a display name into a file name fragment.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "untitled"
	}

	return out
}
