package validators

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageUpload is an uploaded file whose content was sniffed as an image
type ImageUpload struct {
	Header      *multipart.FileHeader
	ContentType string
}

// InspectImages sniffs every uploaded file and rejects anything that is not an
// image or is larger than maxBytes. Errors are reported on the "image" field.
func InspectImages(files []*multipart.FileHeader, maxBytes int64) ([]ImageUpload, *ValidationError) {
	verr := NewValidationError()
	uploads := make([]ImageUpload, 0, len(files))
	for _, fh := range files {
		if maxBytes > 0 && fh.Size > maxBytes {
			verr.Add("image", fmt.Sprintf("%s is larger than %d bytes.", fh.Filename, maxBytes))
			continue
		}
		contentType, err := sniff(fh)
		if err != nil {
			verr.Add("image", fmt.Sprintf("%s could not be read.", fh.Filename))
			continue
		}
		if !strings.HasPrefix(contentType, "image/") {
			verr.Add("image", fmt.Sprintf("Upload a valid image. %s is %s.", fh.Filename, contentType))
			continue
		}
		uploads = append(uploads, ImageUpload{Header: fh, ContentType: contentType})
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return uploads, nil
}

func sniff(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}
