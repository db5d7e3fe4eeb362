package editor

import (
	"image"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/model"
	"github.com/aliskhannn/media-editor/internal/preset"
)

// State is the lifecycle stage of the editor.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateEditingMaster
	StateEditingVariant
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditingMaster:
		return "editing:master"
	case StateEditingVariant:
		return "editing:variant"
	default:
		return "closed"
	}
}

func (s State) editing() bool {
	return s == StateEditingMaster || s == StateEditingVariant
}

// Action names a persistence operation. At most one of each kind may be
// outstanding per session.
type Action string

const (
	ActionSaveAsVariant     Action = "save-as-variant"
	ActionUpdateVariant     Action = "update-variant"
	ActionForkVariant       Action = "fork-variant"
	ActionSaveAsNewImage    Action = "save-as-new-image"
	ActionSaveMasterDetails Action = "save-master-details"
	ActionUseForContext     Action = "use-for-context"
)

// SaveResult is handed to OnSave after a successful persistence operation.
// Variant is nil for operations that only touch the asset.
type SaveResult struct {
	Action  Action
	Asset   model.MediaAsset
	Variant *model.MediaVariant
}

// OpenRequest describes the image an editor session is opened on.
type OpenRequest struct {
	// PhysicalURL locates the bitmap of the physical ancestor.
	PhysicalURL string
	Asset       model.MediaAsset

	OnSave  func(SaveResult)
	OnClose func()

	// TargetVariantID deep-links into a variant when it exists.
	TargetVariantID uuid.UUID
	// ContextLabel enables UseForContext, e.g. "Hero" or "Section 2".
	ContextLabel string
}

// session is everything scoped to one open image. It is replaced, never
// reused, when the editor opens another image.
type session struct {
	req   OpenRequest
	asset model.MediaAsset
	state State

	physical  image.Image
	effective image.Image

	variantID uuid.UUID
	// selection counts SelectMaster/SelectVariant switches.
	selection uint64
	filters   model.FilterState
	caption   string
	altText   string

	details     model.AssetDetails
	openedTitle string

	variants []model.MediaVariant
	presets  *preset.Catalog

	inflight map[Action]bool
}

func newSession(req OpenRequest) *session {
	return &session{
		req:         req,
		asset:       req.Asset,
		state:       StateLoading,
		filters:     model.NeutralFilters(),
		details:     req.Asset.Details(),
		openedTitle: req.Asset.AdminTitle,
		inflight:    make(map[Action]bool),
	}
}

func (s *session) findVariant(id uuid.UUID) (model.MediaVariant, bool) {
	for _, v := range s.variants {
		if v.ID == id {
			return v, true
		}
	}

	return model.MediaVariant{}, false
}

func (s *session) replaceVariant(v model.MediaVariant) {
	for i := range s.variants {
		if s.variants[i].ID == v.ID {
			s.variants[i] = v
			return
		}
	}

	s.variants = append(s.variants, v)
}

// masterDefaults returns the transform stored on a virtual master, or nils
// for a physical one.
func (s *session) masterDefaults() (*model.CropRectangle, *model.FilterState) {
	if s.asset.IsPhysical() {
		return nil, nil
	}

	return s.asset.DefaultCrop, s.asset.FilterState
}

// release drops cached bitmaps and lists.
func (s *session) release() {
	s.state = StateClosed
	s.physical = nil
	s.effective = nil
	s.variants = nil
	s.presets = nil
}
