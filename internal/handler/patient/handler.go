package patient

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinichq/booking-api/internal/handler"
	"github.com/clinichq/booking-api/internal/middleware"
	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/service/patient"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("/me", h.Profile)
		patients.PUT("/me", h.UpdateProfile)
	}
}

func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.svc.Get(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

// UpdateProfile accepts multipart form data with an optional image
// part.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdatePatientRequest
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

	profile, err := h.svc.Update(c.Request.Context(), middleware.SubjectID(c), &req, image)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}
