package patienttreatment

import (
	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/internal/handler"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/service/patienttreatment"
	"github.com/dentika/clinic-api/internal/validation"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/httputil"
)

type Handler struct {
	service   patienttreatment.PatientTreatmentServicer
	validator *validation.Validator
}

func NewHandler(service patienttreatment.PatientTreatmentServicer, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	courses := r.Group("/patient-treatments")
	{
		courses.POST("", h.CreatePatientTreatment)
		courses.GET("", h.ListPatientTreatments)
		courses.GET("/:id", h.GetPatientTreatment)
		courses.PUT("/:id", h.UpdatePatientTreatment)
		courses.DELETE("/:id", h.DeletePatientTreatment)
	}
}

func (h *Handler) CreatePatientTreatment(c *gin.Context) {
	var req model.CreatePatientTreatmentRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	created, err := h.service.CreatePatientTreatment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetPatientTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetPatientTreatment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdatePatientTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.CreatePatientTreatmentRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.service.UpdatePatientTreatment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeletePatientTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePatientTreatment(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

// ListPatientTreatments lists one patient's courses. Courses only
// make sense against a patient, so patient_id is required here;
// GET /patients/:id/treatments serves the same view.
func (h *Handler) ListPatientTreatments(c *gin.Context) {
	patientID, ok := handler.QueryInt64(c, "patient_id")
	if !ok {
		return
	}
	if patientID == 0 {
		httputil.RespondWithError(c, apperrors.NewBadRequest("patient_id query parameter is required", nil))
		return
	}

	status := model.TreatmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		httputil.RespondWithError(c, apperrors.NewBadRequest("status must be one of: active, completed, cancelled", nil))
		return
	}

	courses, err := h.service.ListByPatient(c.Request.Context(), patientID, status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, courses)
}
