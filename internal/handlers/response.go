package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reminder-engine/internal/domain/entities"
)

// SuccessResponse is the envelope for every 2xx JSON body.
type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorResponse is the envelope for every non-2xx JSON body.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func newSuccessResponse(message string, data interface{}, requestID string) SuccessResponse {
	return SuccessResponse{Message: message, Data: data, RequestID: requestID, Timestamp: time.Now()}
}

func newErrorResponse(errMsg, details, requestID string) ErrorResponse {
	return ErrorResponse{Error: errMsg, Details: details, RequestID: requestID, Timestamp: time.Now()}
}

func getRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, newSuccessResponse(message, data, getRequestID(c)))
}

// respondErr maps a domain error's Kind to an HTTP status and writes the
// error envelope. This is the only place in the codebase that turns a Kind
// into a status code, per the error-kind design.
func respondErr(c *gin.Context, err error) {
	status := statusForErr(err)
	c.JSON(status, newErrorResponse(http.StatusText(status), err.Error(), getRequestID(c)))
}

func statusForErr(err error) int {
	switch entities.KindOf(err) {
	case entities.KindValidation:
		return http.StatusBadRequest
	case entities.KindInvalidTransition:
		return http.StatusConflict
	case entities.KindNotFound:
		return http.StatusNotFound
	case entities.KindSchedulingFailed:
		return http.StatusUnprocessableEntity
	case entities.KindTransientIO:
		return http.StatusServiceUnavailable
	case entities.KindPermanentIO:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
