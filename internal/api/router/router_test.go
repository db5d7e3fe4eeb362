package router

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/api/handlers/media"
	"github.com/aliskhannn/media-editor/internal/api/handlers/preset"
	"github.com/aliskhannn/media-editor/internal/api/handlers/variant"
	"github.com/aliskhannn/media-editor/internal/gateway"
	"github.com/aliskhannn/media-editor/internal/model"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	variantrepo "github.com/aliskhannn/media-editor/internal/repository/variant"
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
	"github.com/aliskhannn/media-editor/internal/storage/file"
)

func TestMain(m *testing.M) {
	zlog.Init()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// memory keeps every table in maps.
type memory struct {
	assets   map[uuid.UUID]model.MediaAsset
	variants map[uuid.UUID]model.MediaVariant
	presets  []model.Preset
	objects  map[string][]byte
}

func (m *memory) Create(_ context.Context, a model.MediaAsset) (model.MediaAsset, error) {
	a.ID = uuid.New()
	m.assets[a.ID] = a
	return a, nil
}

func (m *memory) Get(_ context.Context, id uuid.UUID) (model.MediaAsset, error) {
	a, ok := m.assets[id]
	if !ok {
		return model.MediaAsset{}, mediarepo.ErrMediaNotFound
	}
	return a, nil
}

func (m *memory) GetByHash(context.Context, string) (model.MediaAsset, error) {
	return model.MediaAsset{}, mediarepo.ErrMediaNotFound
}

func (m *memory) List(context.Context, mediarepo.Filter) ([]model.MediaAsset, int, error) {
	return nil, 0, nil
}

func (m *memory) UpdateDetails(_ context.Context, id uuid.UUID, d model.AssetDetails) error {
	a, ok := m.assets[id]
	if !ok {
		return mediarepo.ErrMediaNotFound
	}
	m.assets[id] = a.WithDetails(d)
	return nil
}

type variantTable struct{ *memory }

func (v variantTable) ListByAsset(_ context.Context, assetID uuid.UUID) ([]model.MediaVariant, error) {
	var out []model.MediaVariant
	for _, x := range v.variants {
		if x.MediaAssetID == assetID {
			out = append(out, x)
		}
	}
	return out, nil
}

func (v variantTable) Create(_ context.Context, x model.MediaVariant) (uuid.UUID, error) {
	x.ID = uuid.New()
	v.variants[x.ID] = x
	return x.ID, nil
}

func (v variantTable) Update(_ context.Context, x model.MediaVariant) error {
	old, ok := v.variants[x.ID]
	if !ok || old.MediaAssetID != x.MediaAssetID {
		return variantrepo.ErrVariantNotFound
	}
	v.variants[x.ID] = x
	return nil
}

type presetTable struct{ *memory }

func (p presetTable) List(context.Context) ([]model.Preset, error) { return p.presets, nil }

func (p presetTable) Reorder(_ context.Context, ids []uuid.UUID) error {
	for i, id := range ids {
		for j := range p.presets {
			if p.presets[j].ID == id {
				p.presets[j].DisplayOrder = i + 1
			}
		}
	}
	return nil
}

type eventTable struct{}

func (eventTable) Save(context.Context, model.MediaEvent) error { return nil }

func (eventTable) ListByAsset(context.Context, uuid.UUID, int) ([]model.MediaEvent, error) {
	return nil, nil
}

type objectStore struct{ *memory }

func (s objectStore) Save(_ context.Context, subdir, filename string, src io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	p := subdir + "/" + filename
	s.objects[p] = data
	return p, nil
}

func (s objectStore) Load(_ context.Context, p string) (file.Object, error) {
	data, ok := s.objects[p]
	if !ok {
		return file.Object{}, file.ErrObjectNotFound
	}
	return file.Object{ReadCloser: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data)), ContentType: "image/png"}, nil
}

func newGateway(t *testing.T) (*gateway.Client, *memory) {
	t.Helper()

	mem := &memory{
		assets:   map[uuid.UUID]model.MediaAsset{},
		variants: map[uuid.UUID]model.MediaVariant{},
		objects:  map[string][]byte{},
		presets: []model.Preset{
			{ID: uuid.New(), Type: model.PresetCrop, Name: "Square", Details: model.PresetDetails{AspectRatio: "1:1"}, DisplayOrder: 1},
			{ID: uuid.New(), Type: model.PresetCrop, Name: "Wide", Details: model.PresetDetails{AspectRatio: "16:9"}, DisplayOrder: 2},
		},
	}

	svc := mediasvc.NewService(mediasvc.Repositories{
		Media:    mem,
		Variants: variantTable{mem},
		Presets:  presetTable{mem},
		Events:   eventTable{},
	}, objectStore{mem}, nil, nil)

	r := Setup(Handlers{
		Media:    media.NewHandler(svc, 1<<20),
		Variants: variant.NewHandler(svc),
		Presets:  preset.NewHandler(svc),
	}, []string{"*"})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return gateway.New(srv.URL, 5*time.Second), mem
}

func (m *memory) seedPhysical(t *testing.T, w, h int) model.MediaAsset {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	m.objects["original/seed.png"] = buf.Bytes()

	a, _ := m.Create(context.Background(), model.MediaAsset{
		FilePath: "original/seed.png", Width: w, Height: h, AdminTitle: "Beach",
	})
	return a
}

func TestGatewayVariantRoundTrip(t *testing.T) {
	client, mem := newGateway(t)
	master := mem.seedPhysical(t, 200, 100)
	ctx := context.Background()

	details := model.VariantDetails{
		Crop:    model.CropRectangle{X: 10, Y: 10, Width: 80, Height: 60},
		Filters: model.FilterState{Brightness: 120, Contrast: 90, Saturation: 100, Hue: 30},
		Caption: "caption",
		AltText: "alt",
	}

	id, err := client.CreateVariant(ctx, master.ID, "Hero", details)
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}

	variants, err := client.ListVariants(ctx, master.ID)
	if err != nil {
		t.Fatalf("list variants: %v", err)
	}
	if len(variants) != 1 || variants[0].ID != id || variants[0].Details != details {
		t.Fatalf("variants: got=%+v", variants)
	}

	v := variants[0]
	for i := 0; i < 2; i++ {
		if _, err := client.UpdateVariant(ctx, v); err != nil {
			t.Fatalf("idempotent update %d: %v", i, err)
		}
	}

	v.ID = uuid.New()
	if _, err := client.UpdateVariant(ctx, v); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("vanished variant: want ErrNotFound got=%v", err)
	}
}

func TestGatewayVirtualMasterAndFile(t *testing.T) {
	client, mem := newGateway(t)
	master := mem.seedPhysical(t, 200, 100)
	ctx := context.Background()

	virt, err := client.CreateVirtualMaster(ctx, model.VirtualMasterRequest{
		SourceMediaAssetID: master.ID,
		Crop:               model.CropRectangle{X: 0, Y: 0, Width: 50, Height: 40},
		Filters:            model.NeutralFilters(),
		Details:            model.AssetDetails{AdminTitle: "Beach crop"},
	})
	if err != nil {
		t.Fatalf("create virtual master: %v", err)
	}
	if virt.PhysicalAncestorID() != master.ID || virt.Width != 50 || virt.Height != 40 {
		t.Fatalf("virtual master: got=%+v", virt)
	}

	_, err = client.CreateVirtualMaster(ctx, model.VirtualMasterRequest{
		SourceMediaAssetID: virt.ID,
		Filters:            model.NeutralFilters(),
	})
	if err == nil || errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("virtual source must be rejected, got=%v", err)
	}

	loader := gateway.NewLoader(client.BaseURL(), 5*time.Second)
	img, err := loader.Load(ctx, virt.ImageURL)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("virtual master must stream the ancestor bitmap, got %v", b)
	}
}

func TestGatewayPresetsAndDetails(t *testing.T) {
	client, mem := newGateway(t)
	master := mem.seedPhysical(t, 20, 20)
	ctx := context.Background()

	presets, err := client.ListPresets(ctx)
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets) != 2 || presets[0].Details.AspectRatio != "1:1" {
		t.Fatalf("presets: got=%+v", presets)
	}

	if err := client.ReorderPresets(ctx, []uuid.UUID{presets[1].ID, presets[0].ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if mem.presets[1].DisplayOrder != 1 || mem.presets[0].DisplayOrder != 2 {
		t.Fatalf("orders: got=%d,%d", mem.presets[0].DisplayOrder, mem.presets[1].DisplayOrder)
	}

	d := model.AssetDetails{AdminTitle: "Renamed", AltText: "alt"}
	if err := client.UpdateAssetDetails(ctx, master.ID, d); err != nil {
		t.Fatalf("update details: %v", err)
	}

	got, err := client.GetAsset(ctx, master.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.Details() != d {
		t.Fatalf("details: want=%+v got=%+v", d, got.Details())
	}

	if _, err := client.GetAsset(ctx, uuid.New()); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("missing asset: want ErrNotFound got=%v", err)
	}
}
