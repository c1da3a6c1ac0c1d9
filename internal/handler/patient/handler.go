package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/internal/handler"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/service/image"
	"github.com/dentika/clinic-api/internal/service/patient"
	"github.com/dentika/clinic-api/internal/service/patienttreatment"
	"github.com/dentika/clinic-api/internal/validation"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/httputil"
)

// Handler serves patient profiles plus the nested views a clinic
// actually works from: the patient's treatment courses and gallery.
type Handler struct {
	service   patient.PatientServicer
	courses   patienttreatment.PatientTreatmentServicer
	images    image.ImageServicer
	validator *validation.Validator
}

func NewHandler(service patient.PatientServicer, courses patienttreatment.PatientTreatmentServicer, images image.ImageServicer, validator *validation.Validator) *Handler {
	return &Handler{
		service:   service,
		courses:   courses,
		images:    images,
		validator: validator,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.GET("/:id/treatments", h.ListTreatments)
		patients.GET("/:id/images", h.ListImages)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.CreatePatientRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}

// ListTreatments returns the patient's courses, optionally narrowed
// by ?status=active|completed|cancelled.
func (h *Handler) ListTreatments(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	status := model.TreatmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		httputil.RespondWithError(c, apperrors.NewBadRequest("status must be one of: active, completed, cancelled", nil))
		return
	}

	courses, err := h.courses.ListByPatient(c.Request.Context(), id, status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, courses)
}

// ListImages returns the patient's gallery. ?visible=true narrows to
// patient-facing shots.
func (h *Handler) ListImages(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	filter := &model.ImageFilter{
		PatientID:   id,
		VisibleOnly: c.Query("visible") == "true",
	}

	gallery, err := h.images.ListImages(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gallery)
}
