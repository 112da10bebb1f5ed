package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/clinichq/booking-api/pkg/errors"
)

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes the envelope with the status mapped from the error
// taxonomy. Internal errors are logged with their cause; the client
// only sees the generic message.
func Error(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Code == apperrors.ErrInternal {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("request failed")
	}
	c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
}
