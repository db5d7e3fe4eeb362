package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/aliskhannn/media-editor/internal/editor"
	"github.com/aliskhannn/media-editor/internal/model"
)

const (
	actionPreview       = "preview"
	actionSaveVariant   = "save-variant"
	actionUpdateVariant = "update-variant"
	actionFork          = "fork"
	actionSaveNewImage  = "save-new-image"
	actionSaveDetails   = "save-details"
	actionUseFor        = "use-for"
)

var actions = []string{
	actionPreview, actionSaveVariant, actionUpdateVariant, actionFork,
	actionSaveNewImage, actionSaveDetails, actionUseFor,
}

var resetTargets = []editor.ResetTarget{
	editor.ResetZoom, editor.ResetBrightness, editor.ResetContrast, editor.ResetSaturation,
	editor.ResetHue, editor.ResetCrop, editor.ResetCropZoom, editor.ResetPosition, editor.ResetAllFilters,
}

type options struct {
	assetRaw   string
	variantRaw string
	asset      uuid.UUID
	variant    uuid.UUID

	cropRaw string
	crop    *model.CropRectangle
	zoom    float64

	brightness float64
	contrast   float64
	saturation float64
	hue        float64
	// slider name -> value, only for sliders given on the command line
	sliders map[string]float64

	preset string
	resets []string

	action       string
	variantType  string
	contextLabel string

	title, caption, altText, sourceURL, attribution string
	changed                                         map[string]bool

	out    string
	thumbs string
}

func registerFlags(fs *pflag.FlagSet) *options {
	o := &options{}

	fs.String("gateway", "", "media API root, e.g. http://localhost:8080")
	fs.Duration("timeout", 30*time.Second, "timeout of one API call")
	fs.String("log-level", "info", "log level")

	fs.StringVar(&o.assetRaw, "asset", "", "id of the asset to open (required)")
	fs.StringVar(&o.variantRaw, "variant", "", "id of a variant to open instead of the master")

	fs.StringVar(&o.cropRaw, "crop", "", "crop box as x,y,width,height")
	fs.Float64Var(&o.zoom, "zoom", 1, "zoom of the crop surface")
	fs.Float64Var(&o.brightness, "brightness", model.NeutralPercent, "brightness in percent (0-200)")
	fs.Float64Var(&o.contrast, "contrast", model.NeutralPercent, "contrast in percent (0-200)")
	fs.Float64Var(&o.saturation, "saturation", model.NeutralPercent, "saturation in percent (0-200)")
	fs.Float64Var(&o.hue, "hue", model.NeutralHue, "hue rotation in degrees (0-360)")
	fs.StringVar(&o.preset, "preset", "", "name of a filter or crop preset to apply")
	fs.StringSliceVar(&o.resets, "reset", nil, "controls to reset before other adjustments")

	fs.StringVar(&o.action, "action", actionPreview, "one of "+strings.Join(actions, ", "))
	fs.StringVar(&o.variantType, "variant-type", "", "name of a variant created by save-variant")
	fs.StringVar(&o.contextLabel, "context", "", "context label for use-for, e.g. Hero")

	fs.StringVar(&o.title, "title", "", "admin title")
	fs.StringVar(&o.caption, "caption", "", "public caption")
	fs.StringVar(&o.altText, "alt", "", "alt text")
	fs.StringVar(&o.sourceURL, "source-url", "", "source URL")
	fs.StringVar(&o.attribution, "attribution", "", "attribution")

	fs.StringVarP(&o.out, "out", "o", "", "write the live preview to this file")
	fs.StringVar(&o.thumbs, "thumbs", "", "write variant and preset thumbnails into this directory")

	return o
}

// resolve validates the parsed flags.
func (o *options) resolve(fs *pflag.FlagSet) error {
	var err error

	if o.assetRaw == "" {
		return errors.New("--asset is required")
	}
	if o.asset, err = uuid.Parse(o.assetRaw); err != nil {
		return fmt.Errorf("invalid --asset: %w", err)
	}
	if o.variantRaw != "" {
		if o.variant, err = uuid.Parse(o.variantRaw); err != nil {
			return fmt.Errorf("invalid --variant: %w", err)
		}
	}

	if o.cropRaw != "" {
		c, err := parseCrop(o.cropRaw)
		if err != nil {
			return err
		}
		o.crop = &c
	}

	if !slices.Contains(actions, o.action) {
		return fmt.Errorf("unknown --action %q", o.action)
	}
	if o.action == actionUseFor && o.contextLabel == "" {
		return errors.New("--action use-for needs --context")
	}

	for _, r := range o.resets {
		if !slices.Contains(resetTargets, editor.ResetTarget(r)) {
			return fmt.Errorf("unknown --reset target %q", r)
		}
	}

	o.sliders = map[string]float64{}
	for name, v := range map[string]float64{
		"brightness": o.brightness,
		"contrast":   o.contrast,
		"saturation": o.saturation,
		"hue":        o.hue,
	} {
		if fs.Changed(name) {
			o.sliders[name] = v
		}
	}

	o.changed = map[string]bool{}
	for _, name := range []string{"zoom", "title", "caption", "alt", "source-url", "attribution"} {
		o.changed[name] = fs.Changed(name)
	}

	return nil
}

// parseCrop parses "x,y,width,height".
func parseCrop(s string) (model.CropRectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.CropRectangle{}, fmt.Errorf("invalid --crop %q: want x,y,width,height", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.CropRectangle{}, fmt.Errorf("invalid --crop %q: %w", s, err)
		}
		v[i] = f
	}

	r := model.CropRectangle{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if !r.Valid() || r.X < 0 || r.Y < 0 {
		return model.CropRectangle{}, fmt.Errorf("invalid --crop %q: need a positive size inside the image", s)
	}

	return r, nil
}

// applySliders overrides the sliders given on the command line.
func applySliders(f model.FilterState, sliders map[string]float64) model.FilterState {
	for name, v := range sliders {
		switch name {
		case "brightness":
			f.Brightness = v
		case "contrast":
			f.Contrast = v
		case "saturation":
			f.Saturation = v
		case "hue":
			f.Hue = v
		}
	}

	return f
}
