package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agencyio/internal/services"
	apperrors "agencyio/pkg/errors"
)

// ErrorResponse is the generic error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse carries field-keyed validation messages so callers
// can render per-field feedback
type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

// writeError maps service errors onto HTTP responses
func writeError(c echo.Context, err error) error {
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: verrs.Fields()})
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: appErr.Message})
		case apperrors.ErrCodeConflict:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: appErr.Message})
		case apperrors.ErrCodeBadRequest, apperrors.ErrCodeValidation:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
		}
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
