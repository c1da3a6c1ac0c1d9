package appointment

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/internal/handler"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/service/appointment"
	"github.com/dentika/clinic-api/internal/validation"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/httputil"
)

type Handler struct {
	service   appointment.AppointmentServicer
	validator *validation.Validator
}

func NewHandler(service appointment.AppointmentServicer, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/today", h.ListToday)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	created, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.CreateAppointmentRequest
	if !handler.DecodeJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.service.UpdateAppointment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

// ListAppointments filters by ?from=&to=&patient_id=&staff_id=&status=.
// Timestamps are RFC 3339.
func (h *Handler) ListAppointments(c *gin.Context) {
	filter := &model.AppointmentFilter{}

	var ok bool
	if filter.PatientID, ok = handler.QueryInt64(c, "patient_id"); !ok {
		return
	}
	if filter.StaffID, ok = handler.QueryInt64(c, "staff_id"); !ok {
		return
	}

	filter.Status = model.AppointmentStatus(c.Query("status"))
	if filter.Status != "" && !filter.Status.Valid() {
		httputil.RespondWithError(c, apperrors.NewBadRequest("status must be one of: pending, confirmed, cancelled, completed", nil))
		return
	}

	if filter.From, ok = parseTimeQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = parseTimeQuery(c, "to"); !ok {
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListToday(c *gin.Context) {
	appointments, err := h.service.ListToday(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(name+" must be an RFC 3339 timestamp", err))
		return time.Time{}, false
	}
	return t, true
}
