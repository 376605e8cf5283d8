package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "user-table-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// errorStatus maps a usecase error to an HTTP status and response body.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		validation   *pkgerrors.ValidationError
		notFound     *pkgerrors.NotFoundError
		exists       *pkgerrors.AlreadyExistsError
		precondition *pkgerrors.FailedPreconditionError
		internal     *pkgerrors.InternalError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validation.Message, Field: validation.Field}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFound.Error()}
	case errors.As(err, &exists):
		return http.StatusConflict, ErrorResponse{Error: "already_exists", Message: exists.Error()}
	case errors.As(err, &precondition):
		return http.StatusConflict, ErrorResponse{Error: "failed_precondition", Message: precondition.Error()}
	case errors.As(err, &internal):
		// The wrapped cause stays in the logs
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: internal.Message}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	}
}

// handleError converts usecase errors to appropriate HTTP responses
func handleError(c *gin.Context, err error) {
	status, body := errorStatus(err)
	_ = c.Error(err)
	c.JSON(status, body)
}
