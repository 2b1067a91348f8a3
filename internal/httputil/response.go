// Package httputil holds the JSON envelopes shared by the order and outbox handlers.
package httputil

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/slimtrack/internal/errors"
)

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorMapping binds a domain sentinel to its HTTP representation. An empty
// message means the wrapped error text is safe to show to the client.
type errorMapping struct {
	sentinel error
	status   int
	code     string
	message  string
}

var errorMappings = []errorMapping{
	{sentinel: apperrors.ErrNotFound, status: http.StatusNotFound, code: "not_found", message: "The requested resource was not found"},
	{sentinel: apperrors.ErrConflict, status: http.StatusConflict, code: "conflict"},
	{sentinel: apperrors.ErrInvalidInput, status: http.StatusUnprocessableEntity, code: "invalid_input"},
}

var internalErrorMapping = errorMapping{
	status:  http.StatusInternalServerError,
	code:    "internal_error",
	message: "An internal error occurred",
}

func classify(err error) errorMapping {
	for _, m := range errorMappings {
		if apperrors.Is(err, m.sentinel) {
			return m
		}
	}
	return internalErrorMapping
}

// clientMessage strips the trailing sentinel text added by apperrors.Wrap, so
// "order cannot be cancelled: conflict" is returned as "order cannot be cancelled".
func clientMessage(err error, m errorMapping) string {
	if m.message != "" {
		return m.message
	}
	msg := err.Error()
	if m.sentinel != nil {
		msg = strings.TrimSuffix(msg, ": "+m.sentinel.Error())
	}
	return msg
}

// HandleErrorGin maps a use case error to its status code and writes the JSON body.
// Errors that match no domain sentinel become a 500 whose cause is only logged.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}
	m := classify(err)
	writeError(c, m.status, m.code, clientMessage(err, m), err, logger)
}

// HandleBadRequestGin answers 400 for malformed JSON, ids or query parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, http.StatusBadRequest, "bad_request", err.Error(), err, logger)
}

// HandleValidationErrorGin answers 422 for request bodies that parse but fail validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), err, logger)
}

// HandleTooManyRequestsGin answers 429 with a Retry-After header of at least one second.
func HandleTooManyRequestsGin(c *gin.Context, retryAfterSeconds int, logger *slog.Logger) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	writeError(
		c,
		http.StatusTooManyRequests,
		"rate_limit_exceeded",
		"Too many requests from this IP. Please retry after the specified delay.",
		nil,
		logger,
	)
}

func writeError(c *gin.Context, status int, code, message string, cause error, logger *slog.Logger) {
	requestID := requestid.Get(c)

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		attrs := []any{
			slog.Int("status_code", status),
			slog.String("error_code", code),
		}
		if requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if cause != nil {
			attrs = append(attrs, slog.Any("error", cause))
		}
		logger.Log(c, level, "request failed", attrs...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestID,
	})
}
