package treatment

import (
	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/internal/handler"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/service/treatment"
	"github.com/dentika/clinic-api/internal/validation"
	"github.com/dentika/clinic-api/pkg/httputil"
)

type Handler struct {
	service   treatment.TreatmentServicer
	validator *validation.Validator
}

func NewHandler(service treatment.TreatmentServicer, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	treatments := r.Group("/treatments")
	{
		treatments.POST("", h.CreateTreatment)
		treatments.GET("", h.ListTreatments)
		treatments.GET("/:id", h.GetTreatment)
		treatments.PUT("/:id", h.UpdateTreatment)
		treatments.DELETE("/:id", h.DeleteTreatment)
	}
}

func (h *Handler) CreateTreatment(c *gin.Context) {
	var req model.CreateTreatmentRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	created, err := h.service.CreateTreatment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetTreatment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.CreateTreatmentRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.service.UpdateTreatment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTreatment(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) ListTreatments(c *gin.Context) {
	treatments, err := h.service.ListTreatments(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, treatments)
}
