package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/handler"
	"github.com/clinichq/booking-api/internal/middleware"
	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/service/booking"
	"github.com/clinichq/booking-api/internal/service/doctor"
)

// Handler exposes the public doctor directory and the doctor-side
// console.
type Handler struct {
	svc        *doctor.Service
	bookingSvc *booking.Service
}

func NewHandler(svc *doctor.Service, bookingSvc *booking.Service) *Handler {
	return &Handler{svc: svc, bookingSvc: bookingSvc}
}

// RegisterPublicRoutes registers the unauthenticated directory.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListPublic)
		doctors.GET("/:id/slots", h.Ledger)
	}
}

// RegisterRoutes registers the doctor-authenticated console.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	console := r.Group("/doctor")
	{
		console.GET("/appointments", h.ListAppointments)
		console.POST("/appointments/:id/complete", h.Complete)
		console.POST("/appointments/:id/cancel", h.Cancel)
		console.GET("/dashboard", h.Dashboard)
		console.GET("/profile", h.Profile)
		console.PUT("/profile", h.UpdateProfile)
		console.POST("/availability", h.ToggleAvailability)
	}
}

func (h *Handler) ListPublic(c *gin.Context) {
	doctors, err := h.svc.ListPublic(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) Ledger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	ledger, err := h.svc.Ledger(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"slots_booked": ledger}))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.bookingSvc.ListForDoctor(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.bookingSvc.Complete(c.Request.Context(), middleware.SubjectID(c), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"completed": true}))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.bookingSvc.Cancel(c.Request.Context(), middleware.SubjectID(c), model.ActorDoctor, id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"cancelled": true}))
}

func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.bookingSvc.DoctorDashboard(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dashboard))
}

func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.svc.Get(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), middleware.SubjectID(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ToggleAvailability(c *gin.Context) {
	profile, err := h.svc.ToggleAvailability(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}
