package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/placenote/backend/internal/middleware"
	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/anonto42/placenote/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FormErrorResponse is returned when a submitted form fails validation.
// Input echoes the submission so the client can show it again.
type FormErrorResponse struct {
	Errors map[string]string `json:"errors"`
	Input  interface{}       `json:"input"`
}

// getUserIDFromContext returns the authenticated user ID, or 0 when anonymous
func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserID(c)
}

func parseID(c echo.Context, name, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+strings.ToLower(label)+" ID")
	}
	return uint(id), nil
}

// repositoryError maps repository sentinel errors onto HTTP errors
func repositoryError(log *zap.Logger, err error, label string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, label+" not found")
	case errors.Is(err, repositories.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this "+strings.ToLower(label))
	}
	log.Error("repository failure", zap.String("resource", label), zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// validate runs the echo validator and returns the field errors, if any
func validate(c echo.Context, i interface{}) (*validators.ValidationError, error) {
	verr := validators.NewValidationError()
	if err := c.Validate(i); err != nil {
		var fieldErrs *validators.ValidationError
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		verr.Merge(fieldErrs)
	}
	return verr, nil
}

// uploadedFiles returns the files posted under field, or nil for non multipart requests
func uploadedFiles(c echo.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}
