package variant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/api/dto"
	"github.com/aliskhannn/media-editor/internal/model"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	variantrepo "github.com/aliskhannn/media-editor/internal/repository/variant"
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
)

func TestMain(m *testing.M) {
	zlog.Init()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeService struct {
	asset    uuid.UUID
	variants map[uuid.UUID]model.MediaVariant
	updates  int
}

func (f *fakeService) ListVariants(_ context.Context, assetID uuid.UUID) ([]model.MediaVariant, error) {
	if assetID != f.asset {
		return nil, mediarepo.ErrMediaNotFound
	}
	var out []model.MediaVariant
	for _, v := range f.variants {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeService) CreateVariant(_ context.Context, assetID uuid.UUID, variantType, details string) (uuid.UUID, error) {
	if variantType == "" {
		return uuid.Nil, mediasvc.ErrInvalidInput
	}
	d, err := model.DecodeVariantDetails(details)
	if err != nil {
		return uuid.Nil, mediasvc.ErrInvalidInput
	}
	id := uuid.New()
	f.variants[id] = model.MediaVariant{ID: id, MediaAssetID: assetID, VariantType: variantType, Details: d}
	return id, nil
}

func (f *fakeService) UpdateVariant(_ context.Context, id, assetID uuid.UUID, variantType, _ string) error {
	v, ok := f.variants[id]
	if !ok || v.MediaAssetID != assetID {
		return variantrepo.ErrVariantNotFound
	}
	v.VariantType = variantType
	f.variants[id] = v
	f.updates++
	return nil
}

func newTestRouter(svc *fakeService) *ginext.Engine {
	h := NewHandler(svc)

	r := ginext.New()
	r.GET("/api/media/:id/variants", h.List)
	r.POST("/api/media/:id/variants", h.Create)
	r.PUT("/api/variants/:id", h.Update)

	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestCreateThenList(t *testing.T) {
	asset := uuid.New()
	svc := &fakeService{asset: asset, variants: map[uuid.UUID]model.MediaVariant{}}
	r := newTestRouter(svc)

	body := `{"media_asset_id":"` + asset.String() + `","variant_type":"Hero","variant_details":"{\"crop\":{\"x\":0,\"y\":0,\"width\":10,\"height\":10}}"}`
	rec := serve(r, http.MethodPost, "/api/media/"+asset.String()+"/variants", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: want=201 got=%d body=%s", rec.Code, rec.Body)
	}

	var created dto.VariantIDResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.Success || created.VariantID == uuid.Nil {
		t.Fatalf("response: got=%+v", created)
	}

	rec = serve(r, http.MethodGet, "/api/media/"+asset.String()+"/variants", "")
	var list dto.VariantsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Variants) != 1 || list.Variants[0].ID != created.VariantID {
		t.Fatalf("variants: got=%+v", list.Variants)
	}
	if list.Variants[0].Details.Crop.Width != 10 {
		t.Fatalf("details: got=%+v", list.Variants[0].Details)
	}
}

func TestCreateStatuses(t *testing.T) {
	asset := uuid.New()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"mismatched asset", "/api/media/" + asset.String() + "/variants", `{"media_asset_id":"` + uuid.NewString() + `","variant_type":"Hero"}`, http.StatusBadRequest},
		{"missing type", "/api/media/" + asset.String() + "/variants", `{"variant_details":"{}"}`, http.StatusBadRequest},
		{"malformed body", "/api/media/" + asset.String() + "/variants", `{`, http.StatusBadRequest},
		{"malformed id", "/api/media/x/variants", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeService{asset: asset, variants: map[uuid.UUID]model.MediaVariant{}})
			if rec := serve(r, http.MethodPost, tt.path, tt.body); rec.Code != tt.status {
				t.Fatalf("status: want=%d got=%d body=%s", tt.status, rec.Code, rec.Body)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	asset, id := uuid.New(), uuid.New()
	svc := &fakeService{asset: asset, variants: map[uuid.UUID]model.MediaVariant{
		id: {ID: id, MediaAssetID: asset, VariantType: "Hero"},
	}}
	r := newTestRouter(svc)

	body := `{"variant_id":"` + id.String() + `","media_asset_id":"` + asset.String() + `","variant_type":"Hero","variant_details":"{}"}`

	// Re-sending the same payload is a success every time.
	for i := 0; i < 2; i++ {
		if rec := serve(r, http.MethodPut, "/api/variants/"+id.String(), body); rec.Code != http.StatusOK {
			t.Fatalf("update %d: want=200 got=%d", i, rec.Code)
		}
	}
	if svc.updates != 2 {
		t.Fatalf("updates: want=2 got=%d", svc.updates)
	}

	missing := uuid.New()
	body = `{"media_asset_id":"` + asset.String() + `","variant_type":"Hero","variant_details":"{}"}`
	if rec := serve(r, http.MethodPut, "/api/variants/"+missing.String(), body); rec.Code != http.StatusNotFound {
		t.Fatalf("vanished variant: want=404 got=%d", rec.Code)
	}

	if rec := serve(r, http.MethodPut, "/api/variants/"+id.String(), `{"variant_type":"Hero"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing asset id: want=400 got=%d", rec.Code)
	}
}
