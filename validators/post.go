package validators

import (
	"errors"
	"mime/multipart"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// ValidatePostForm normalizes the form in place, then checks the post fields
// and the attached images together so that every problem is reported in one response.
func ValidatePostForm(v echo.Validator, form *models.PostForm, files []*multipart.FileHeader, maxBytes int64) ([]ImageUpload, *ValidationError) {
	form.Normalize()
	verr := NewValidationError()
	if err := v.Validate(form); err != nil {
		var fieldErrs *ValidationError
		if errors.As(err, &fieldErrs) {
			verr.Merge(fieldErrs)
		} else {
			verr.Add("form", err.Error())
		}
	}

	uploads, imgErr := InspectImages(files, maxBytes)
	verr.Merge(imgErr)
	if verr.HasErrors() {
		return nil, verr
	}
	return uploads, nil
}
