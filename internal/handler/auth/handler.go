package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinichq/booking-api/internal/handler"
	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/service/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.LoginPatient)
		group.POST("/doctor/login", h.LoginDoctor)
		group.POST("/admin/login", h.LoginAdmin)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, token, err := h.svc.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"patient": patient,
		"token":   token,
	}))
}

func (h *Handler) LoginPatient(c *gin.Context) {
	h.login(c, h.svc.LoginPatient)
}

func (h *Handler) LoginDoctor(c *gin.Context) {
	h.login(c, h.svc.LoginDoctor)
}

func (h *Handler) LoginAdmin(c *gin.Context) {
	h.login(c, h.svc.LoginAdmin)
}

func (h *Handler) login(c *gin.Context, fn func(ctx context.Context, email, password string) (string, error)) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	token, err := fn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid credentials"))
			return
		}
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.TokenResponse{Token: token}))
}
