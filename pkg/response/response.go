package response

import (
	"errors"
	"net/http"

	"payment-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorBody is the single error envelope shape (§4.10): all responses are
// JSON, errors nest under "error" with the stable type taxonomy (§7).
type ErrorBody struct {
	Type      apperror.Type `json:"type"`
	Message   string        `json:"message"`
	Code      string        `json:"code,omitempty"`
	Param     string        `json:"param,omitempty"`
	RequestID string        `json:"request_id"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ListEnvelope wraps a paginated collection per §4.10's list shape.
type ListEnvelope struct {
	Object     string      `json:"object"`
	Data       interface{} `json:"data"`
	HasMore    bool        `json:"has_more"`
	TotalCount int64       `json:"total_count"`
}

// OK sends a 200 response with the resource body unwrapped (Stripe-style:
// the resource itself is the top-level JSON document, not a {data:...}
// envelope), replacing the teacher's SuccessResponse wrapper.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the resource body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// List sends a paginated collection (§4.10 GET /payment_intents shape).
func List(c *gin.Context, data interface{}, hasMore bool, totalCount int64) {
	c.JSON(http.StatusOK, ListEnvelope{
		Object:     "list",
		Data:       data,
		HasMore:    hasMore,
		TotalCount: totalCount,
	})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500 as api_error.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, errorEnvelope{Error: ErrorBody{
			Type:      appErr.ErrType,
			Message:   appErr.Message,
			Code:      appErr.Code,
			Param:     appErr.Param,
			RequestID: getRequestID(c),
		}})
		return
	}

	c.JSON(http.StatusInternalServerError, errorEnvelope{Error: ErrorBody{
		Type:      apperror.TypeAPIError,
		Message:   "internal server error",
		RequestID: getRequestID(c),
	}})
}

// getRequestID retrieves the request ID set by the request-id middleware,
// or generates one as a last resort.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
