package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/handler"
	"github.com/clinichq/booking-api/internal/middleware"
	"github.com/clinichq/booking-api/internal/service/payment"
)

// Handler exposes checkout-session creation and the settlement
// webhook.
type Handler struct {
	svc *payment.Service
}

func NewHandler(svc *payment.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the authenticated checkout endpoint.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments/:id/payment", h.CreateCheckoutSession)
}

// RegisterWebhook registers the unauthenticated settlement callback;
// its authenticity comes from the gateway signature.
func (h *Handler) RegisterWebhook(r *gin.RouterGroup) {
	r.POST("/payments/webhook", h.Webhook)
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	checkout, err := h.svc.CreateCheckoutSession(c.Request.Context(), middleware.SubjectID(c), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(checkout))
}

func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read payload"))
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.svc.ConfirmSettlement(c.Request.Context(), payload, signature); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"received": true}))
}
