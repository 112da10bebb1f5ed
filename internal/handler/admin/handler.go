package admin

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/handler"
	"github.com/clinichq/booking-api/internal/middleware"
	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/service/booking"
	"github.com/clinichq/booking-api/internal/service/doctor"
)

// Handler exposes the admin console.
type Handler struct {
	doctorSvc  *doctor.Service
	bookingSvc *booking.Service
}

func NewHandler(doctorSvc *doctor.Service, bookingSvc *booking.Service) *Handler {
	return &Handler{doctorSvc: doctorSvc, bookingSvc: bookingSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	console := r.Group("/admin")
	{
		console.POST("/doctors", h.AddDoctor)
		console.GET("/doctors", h.ListDoctors)
		console.POST("/doctors/:id/availability", h.ToggleAvailability)
		console.GET("/appointments", h.ListAppointments)
		console.POST("/appointments/:id/cancel", h.Cancel)
		console.GET("/dashboard", h.Dashboard)
	}
}

// AddDoctor accepts multipart form data with an optional image part.
func (h *Handler) AddDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var image io.Reader
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read image"))
			return
		}
		defer f.Close()
		image = f
	}

	created, err := h.doctorSvc.AddDoctor(c.Request.Context(), &req, image)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctorSvc.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ToggleAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	updated, err := h.doctorSvc.ToggleAvailability(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.bookingSvc.ListAll(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.bookingSvc.Cancel(c.Request.Context(), middleware.SubjectID(c), model.ActorAdmin, id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"cancelled": true}))
}

func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.bookingSvc.AdminDashboard(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dashboard))
}
