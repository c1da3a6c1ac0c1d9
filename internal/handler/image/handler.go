package image

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/internal/handler"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/service/image"
	"github.com/dentika/clinic-api/internal/storage"
	"github.com/dentika/clinic-api/internal/validation"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/httputil"
)

type Handler struct {
	service   image.ImageServicer
	validator *validation.Validator
}

func NewHandler(service image.ImageServicer, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	images := r.Group("/images")
	{
		images.POST("", h.UploadImage)
		images.GET("", h.ListImages)
		images.GET("/:id", h.GetImage)
		images.GET("/:id/url", h.GetImageURL)
		images.GET("/:id/file", h.DownloadImage)
		images.PUT("/:id", h.UpdateImage)
		images.DELETE("/:id", h.DeleteImage)
	}
}

// UploadImage takes a multipart form: the file part plus patient_id
// and the optional metadata fields. The server picks the object name;
// clients never control where bytes land in the bucket.
func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		httputil.RespondWithValidationError(c, []validation.FieldError{
			{Field: "file", Message: "is required"},
		})
		return
	}
	defer file.Close()

	req, ok := h.buildUploadRequest(c, header)
	if !ok {
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondStructError(c, err)
		return
	}

	img, err := h.service.UploadImage(c.Request.Context(), req, file, header.Size)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, img)
}

// buildUploadRequest assembles the write shape from form fields,
// collecting malformed values as field errors the same way the JSON
// decoder would.
func (h *Handler) buildUploadRequest(c *gin.Context, header *multipart.FileHeader) (*model.CreateImageRequest, bool) {
	var fields []validation.FieldError

	parseInt64 := func(name string) *int64 {
		raw := c.PostForm(name)
		if raw == "" {
			return nil
		}
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: name, Message: "must be an integer"})
			return nil
		}
		return &val
	}

	req := &model.CreateImageRequest{
		OriginalName: header.Filename,
		Type:         header.Header.Get("Content-Type"),
	}

	if pid := parseInt64("patient_id"); pid != nil {
		req.PatientID = *pid
	}
	// Derived even when patient_id is missing so the validator reports
	// only the client's own fields.
	req.Filename = storage.ObjectName(req.PatientID, header.Filename)
	req.TreatmentID = parseInt64("treatment_id")
	req.UploadedByID = parseInt64("uploaded_by_id")

	if raw := c.PostForm("category"); raw != "" {
		category := model.ImageCategory(raw)
		req.Category = &category
	}
	if raw := c.PostForm("is_visible"); raw != "" {
		visible, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: "is_visible", Message: "must be a boolean"})
		} else {
			req.IsVisible = &visible
		}
	}
	if raw := c.PostForm("notes"); raw != "" {
		req.Notes = &raw
	}

	if len(fields) > 0 {
		httputil.RespondWithValidationError(c, fields)
		return nil, false
	}
	return req, true
}

func (h *Handler) GetImage(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetImage(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) GetImageURL(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	url, err := h.service.GetImageURL(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"url": url})
}

func (h *Handler) DownloadImage(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	rc, contentType, err := h.service.DownloadImage(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *Handler) UpdateImage(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.UpdateImageRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.service.UpdateImage(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

// ListImages filters by ?patient_id=&treatment_id=&category=&visible=.
func (h *Handler) ListImages(c *gin.Context) {
	filter := &model.ImageFilter{}

	var ok bool
	if filter.PatientID, ok = handler.QueryInt64(c, "patient_id"); !ok {
		return
	}
	if filter.TreatmentID, ok = handler.QueryInt64(c, "treatment_id"); !ok {
		return
	}

	filter.Category = model.ImageCategory(c.Query("category"))
	if filter.Category != "" && !filter.Category.Valid() {
		httputil.RespondWithError(c, apperrors.NewBadRequest("category must be one of: before, progress, after", nil))
		return
	}
	filter.VisibleOnly = c.Query("visible") == "true"

	images, err := h.service.ListImages(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, images)
}

func respondStructError(c *gin.Context, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		httputil.RespondWithValidationError(c, vErr.Fields)
		return
	}
	httputil.RespondWithError(c, err)
}
