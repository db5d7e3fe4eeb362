package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
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
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
	"github.com/aliskhannn/media-editor/internal/storage/file"
)

func TestMain(m *testing.M) {
	zlog.Init()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeService struct {
	assets  map[uuid.UUID]model.MediaAsset
	files   map[uuid.UUID][]byte
	known   bool
	virtual model.VirtualMasterRequest
	details model.AssetDetails
	filter  mediarepo.Filter
}

func (f *fakeService) UploadAsset(_ context.Context, u mediasvc.Upload) (model.MediaAsset, bool, error) {
	data, _ := io.ReadAll(u.Body)
	if len(data) == 0 {
		return model.MediaAsset{}, false, mediasvc.ErrInvalidInput
	}
	a := model.MediaAsset{ID: uuid.New(), AdminTitle: u.Details.AdminTitle}
	return a, !f.known, nil
}

func (f *fakeService) GetAsset(_ context.Context, id uuid.UUID) (model.MediaAsset, error) {
	a, ok := f.assets[id]
	if !ok {
		return model.MediaAsset{}, mediarepo.ErrMediaNotFound
	}
	return a, nil
}

func (f *fakeService) ListAssets(_ context.Context, flt mediarepo.Filter) ([]model.MediaAsset, int, error) {
	f.filter = flt
	return nil, 0, nil
}

func (f *fakeService) OpenFile(_ context.Context, id uuid.UUID) (file.Object, error) {
	data, ok := f.files[id]
	if !ok {
		return file.Object{}, file.ErrObjectNotFound
	}
	return file.Object{ReadCloser: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data)), ContentType: "image/png"}, nil
}

func (f *fakeService) UpdateDetails(_ context.Context, id uuid.UUID, d model.AssetDetails) error {
	if _, ok := f.assets[id]; !ok {
		return mediarepo.ErrMediaNotFound
	}
	f.details = d
	return nil
}

func (f *fakeService) CreateVirtualMaster(_ context.Context, r model.VirtualMasterRequest) (model.MediaAsset, error) {
	f.virtual = r
	if _, ok := f.assets[r.SourceMediaAssetID]; !ok {
		return model.MediaAsset{}, mediarepo.ErrMediaNotFound
	}
	return model.MediaAsset{ID: uuid.New(), PhysicalSourceAssetID: &r.SourceMediaAssetID}, nil
}

func (f *fakeService) ListEvents(context.Context, uuid.UUID, int) ([]model.MediaEvent, error) {
	return nil, errors.New("db down")
}

func newTestRouter(svc *fakeService) *ginext.Engine {
	h := NewHandler(svc, 1<<20)

	r := ginext.New()
	r.GET("/api/media", h.List)
	r.POST("/api/media", h.Upload)
	r.POST("/api/media/virtual", h.CreateVirtual)
	r.GET("/api/media/:id", h.Get)
	r.GET("/api/media/:id/file", h.File)
	r.PUT("/api/media/:id/details", h.UpdateDetails)
	r.GET("/api/media/:id/events", h.Events)

	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGet(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{assets: map[uuid.UUID]model.MediaAsset{id: {ID: id, AdminTitle: "Beach"}}}
	r := newTestRouter(svc)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/api/media/" + id.String(), http.StatusOK},
		{"missing", "/api/media/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/api/media/nope", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status: want=%d got=%d body=%s", tt.status, rec.Code, rec.Body)
			}

			var env dto.Envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Success != (tt.status == http.StatusOK) {
				t.Fatalf("success: got=%v", env.Success)
			}
		})
	}
}

func TestListParsesQuery(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/media?q=sea&physical=true&limit=10&offset=20", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	want := mediarepo.Filter{Query: "sea", PhysicalOnly: true, Limit: 10, Offset: 20}
	if svc.filter != want {
		t.Fatalf("filter: want=%+v got=%+v", want, svc.filter)
	}
	if !strings.Contains(rec.Body.String(), `"media":[]`) {
		t.Fatalf("empty list must encode as []: %s", rec.Body)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/media?limit=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: want=400 got=%d", rec.Code)
	}
}

func multipartUpload(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "beach.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = w.WriteField("admin_title", "Beach")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/media", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name    string
		known   bool
		content []byte
		status  int
	}{
		{"new file", false, []byte("png"), http.StatusCreated},
		{"known file", true, []byte("png"), http.StatusOK},
		{"empty file", false, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeService{known: tt.known})

			rec := serve(r, multipartUpload(t, tt.content))
			if rec.Code != tt.status {
				t.Fatalf("status: want=%d got=%d body=%s", tt.status, rec.Code, rec.Body)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		r := newTestRouter(&fakeService{})
		req := httptest.NewRequest(http.MethodPost, "/api/media", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

		if rec := serve(r, req); rec.Code != http.StatusBadRequest {
			t.Fatalf("status: want=400 got=%d", rec.Code)
		}
	})
}

func TestFileStreamsBytes(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{files: map[uuid.UUID][]byte{id: []byte("pixels")}}
	r := newTestRouter(svc)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/media/"+id.String()+"/file", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if rec.Body.String() != "pixels" {
		t.Fatalf("body: want=pixels got=%q", rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type: want=image/png got=%q", ct)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/media/"+uuid.NewString()+"/file", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing object: want=404 got=%d", rec.Code)
	}
}

func TestUpdateDetails(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{assets: map[uuid.UUID]model.MediaAsset{id: {ID: id}}}
	r := newTestRouter(svc)

	body := `{"media_asset_id":"` + id.String() + `","admin_title":"New","alt_text":"alt"}`
	rec := serve(r, httptest.NewRequest(http.MethodPut, "/api/media/"+id.String()+"/details", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body)
	}
	if svc.details.AdminTitle != "New" || svc.details.AltText != "alt" {
		t.Fatalf("details: got=%+v", svc.details)
	}

	other := `{"media_asset_id":"` + uuid.NewString() + `"}`
	rec = serve(r, httptest.NewRequest(http.MethodPut, "/api/media/"+id.String()+"/details", strings.NewReader(other)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched id: want=400 got=%d", rec.Code)
	}
}

func TestCreateVirtual(t *testing.T) {
	src := uuid.New()
	svc := &fakeService{assets: map[uuid.UUID]model.MediaAsset{src: {ID: src}}}
	r := newTestRouter(svc)

	body := `{"source_media_asset_id":"` + src.String() + `",` +
		`"current_crop_json":"{\"x\":10,\"y\":20,\"width\":300,\"height\":200}",` +
		`"current_filters_json":"{\"brightness\":120}",` +
		`"new_admin_title":"Beach crop"}`

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/media/virtual", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: want=201 got=%d body=%s", rec.Code, rec.Body)
	}

	want := model.CropRectangle{X: 10, Y: 20, Width: 300, Height: 200}
	if svc.virtual.Crop != want {
		t.Fatalf("crop: want=%+v got=%+v", want, svc.virtual.Crop)
	}
	if svc.virtual.Filters.Brightness != 120 || svc.virtual.Filters.Contrast != 100 {
		t.Fatalf("filters: got=%+v", svc.virtual.Filters)
	}
	if svc.virtual.Details.AdminTitle != "Beach crop" {
		t.Fatalf("title: got=%q", svc.virtual.Details.AdminTitle)
	}

	bad := `{"source_media_asset_id":"` + src.String() + `","current_crop_json":"{oops"}`
	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/media/virtual", strings.NewReader(bad)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed crop: want=400 got=%d", rec.Code)
	}
}

func TestEventsHidesInternalErrors(t *testing.T) {
	r := newTestRouter(&fakeService{})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/media/"+uuid.NewString()+"/events", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Fatalf("internal error leaked: %s", rec.Body)
	}
}
