package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	uploaded *model.CreateImageRequest
	body     []byte
}

func (f *fakeService) UploadImage(_ context.Context, req *model.CreateImageRequest, file io.Reader, _ int64) (*model.Image, error) {
	f.uploaded = req
	f.body, _ = io.ReadAll(file)
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	return &model.Image{ID: 1, PatientID: req.PatientID, Filename: req.Filename, IsVisible: visible}, nil
}

func (f *fakeService) GetImage(_ context.Context, id int64) (*model.Image, error) {
	return &model.Image{ID: id}, nil
}

func (f *fakeService) GetImageURL(context.Context, int64) (string, error) {
	return "https://storage.local/x", nil
}

func (f *fakeService) DownloadImage(context.Context, int64) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("bytes")), "image/jpeg", nil
}

func (f *fakeService) UpdateImage(_ context.Context, id int64, _ *model.UpdateImageRequest) (*model.Image, error) {
	return &model.Image{ID: id}, nil
}

func (f *fakeService) DeleteImage(context.Context, int64) error { return nil }

func (f *fakeService) ListImages(context.Context, *model.ImageFilter) ([]*model.Image, error) {
	return []*model.Image{}, nil
}

func newTestRouter(svc *fakeService) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(svc, validation.New()).RegisterRoutes(api)
	return r
}

func multipartUpload(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if withFile {
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="file"; filename="smile.jpg"`},
			"Content-Type":        {"image/jpeg"},
		})
		require.NoError(t, err)
		_, err = part.Write([]byte("fakejpegbytes"))
		require.NoError(t, err)
	}

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func postUpload(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	body, contentType := multipartUpload(t, map[string]string{
		"patient_id": "7",
		"category":   "before",
		"notes":      "initial visit",
	}, true)

	w := postUpload(t, r, body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NotNil(t, svc.uploaded)
	assert.Equal(t, int64(7), svc.uploaded.PatientID)
	assert.Equal(t, "smile.jpg", svc.uploaded.OriginalName)
	assert.Equal(t, "image/jpeg", svc.uploaded.Type)
	assert.True(t, strings.HasPrefix(svc.uploaded.Filename, "patients/7/"))
	assert.True(t, strings.HasSuffix(svc.uploaded.Filename, ".jpg"))
	require.NotNil(t, svc.uploaded.Category)
	assert.Equal(t, model.ImageCategoryBefore, *svc.uploaded.Category)
	assert.Equal(t, "fakejpegbytes", string(svc.body))
}

func TestUploadImageMissingFile(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body, contentType := multipartUpload(t, map[string]string{"patient_id": "7"}, false)
	w := postUpload(t, r, body, contentType)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"file"`)
	assert.Contains(t, w.Body.String(), "is required")
}

func TestUploadImageMissingPatientID(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body, contentType := multipartUpload(t, nil, true)
	w := postUpload(t, r, body, contentType)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "patient_id")
}

func TestUploadImageMalformedFormNumbers(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body, contentType := multipartUpload(t, map[string]string{
		"patient_id":   "seven",
		"treatment_id": "two",
	}, true)
	w := postUpload(t, r, body, contentType)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error struct {
			Details []validation.FieldError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	fields := map[string]string{}
	for _, fe := range env.Error.Details {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be an integer", fields["patient_id"])
	assert.Equal(t, "must be an integer", fields["treatment_id"])
}

func TestUploadImageBadCategory(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body, contentType := multipartUpload(t, map[string]string{
		"patient_id": "7",
		"category":   "xray",
	}, true)
	w := postUpload(t, r, body, contentType)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be one of: before, progress, after")
}

func TestUpdateImageMetadata(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/images/3",
		strings.NewReader(`{"category":"after","is_visible":false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateImageRejectsBadMetadata(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/images/3",
		strings.NewReader(`{"is_visible":"yes"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be a boolean")
}

func TestDownloadImage(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/images/3/file", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", w.Body.String())
}
