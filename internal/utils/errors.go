package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/workflow"
)

// AppError carries the HTTP status and the message shown to the client.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func NewAppError(status int, message string) *AppError {
	return &AppError{StatusCode: status, Message: message}
}

// WrapError attaches a public message to an internal cause.
func WrapError(status int, message string, err error) *AppError {
	return &AppError{StatusCode: status, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

var (
	ErrUnauthorized = NewAppError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden    = NewAppError(http.StatusForbidden, "Forbidden")
)

// StatusFor maps domain and storage errors onto HTTP status codes.
func StatusFor(err error) (int, string) {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.StatusCode, appErr.Message
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "The resource was modified concurrently, reload and retry"
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, store.ErrNoStock):
		return http.StatusConflict, "Insufficient stock"
	case errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, workflow.ErrUnknownStatus),
		errors.Is(err, workflow.ErrInvalidItems):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, workflow.ErrNotReturnable):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

// HandleError writes {"error": message} for err and aborts the chain.
func HandleError(c *gin.Context, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("❌ request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
