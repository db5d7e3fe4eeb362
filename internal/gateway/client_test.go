package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/media-editor/internal/api/dto"
	"github.com/aliskhannn/media-editor/internal/model"
)

func TestCreateVariantSendsDetailsAsString(t *testing.T) {
	assetID := uuid.New()
	variantID := uuid.New()

	var got dto.SaveVariantRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/media/"+assetID.String()+"/variants" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(dto.VariantIDResponse{Envelope: dto.Envelope{Success: true}, VariantID: variantID})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	details := model.VariantDetails{
		Crop:    model.CropRectangle{Width: 1000, Height: 800},
		Filters: model.FilterState{Brightness: 120, Contrast: 100, Saturation: 100},
	}

	id, err := c.CreateVariant(context.Background(), assetID, "Hero", details)
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if id != variantID {
		t.Fatalf("variant id: want=%s got=%s", variantID, id)
	}

	want := `{"crop":{"x":0,"y":0,"width":1000,"height":800},"filters":{"brightness":120,"contrast":100,"saturation":100,"hue":0},"caption":"","altText":""}`
	if got.VariantDetails != want {
		t.Fatalf("variant_details:\nwant=%s\ngot= %s", want, got.VariantDetails)
	}
	if got.MediaAssetID != assetID || got.VariantType != "Hero" {
		t.Fatalf("request: got %+v", got)
	}
}

func TestUpdateVariantNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"variant not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.UpdateVariant(context.Background(), model.MediaVariant{ID: uuid.New(), MediaAssetID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateVariant: want ErrNotFound got %v", err)
	}
	if errors.Is(err, ErrRequestFailed) {
		t.Fatalf("UpdateVariant: not-found must be distinct from request failure: %v", err)
	}
}

func TestUnsuccessfulEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"database down"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.UpdateAssetDetails(context.Background(), uuid.New(), model.AssetDetails{AdminTitle: "x"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("UpdateAssetDetails: want ErrRequestFailed got %v", err)
	}
}

func TestCreateVirtualMasterPayload(t *testing.T) {
	source := uuid.New()
	created := model.MediaAsset{ID: uuid.New(), PhysicalSourceAssetID: &source, AdminTitle: "Crop"}

	var got dto.CreateVirtualMasterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(dto.MediaResponse{Envelope: dto.Envelope{Success: true}, Media: created})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	asset, err := c.CreateVirtualMaster(context.Background(), model.VirtualMasterRequest{
		SourceMediaAssetID: source,
		Crop:               model.CropRectangle{X: 100, Y: 50, Width: 400, Height: 300},
		Filters:            model.NeutralFilters(),
		Details:            model.AssetDetails{AdminTitle: "Crop"},
	})
	if err != nil {
		t.Fatalf("CreateVirtualMaster: %v", err)
	}

	if got.SourceMediaAssetID != source {
		t.Fatalf("source id: want=%s got=%s", source, got.SourceMediaAssetID)
	}
	if got.CurrentCropJSON != `{"x":100,"y":50,"width":400,"height":300}` {
		t.Fatalf("current_crop_json: got %s", got.CurrentCropJSON)
	}
	if got.NewAdminTitle != "Crop" {
		t.Fatalf("new_admin_title: got %q", got.NewAdminTitle)
	}
	if asset.ID != created.ID || asset.PhysicalAncestorID() != source {
		t.Fatalf("asset: got %+v", asset)
	}
}

func TestLoaderFetchesAndRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/media/a/file":
			_, _ = w.Write(buf.Bytes())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, time.Second)

	got, err := l.Load(context.Background(), "/api/media/a/file")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("size: want=3x2 got=%v", got.Bounds().Size())
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatalf("Load missing: expected error")
	}
}
