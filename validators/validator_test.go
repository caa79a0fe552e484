package validators

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestValidatePostForm(t *testing.T) {
	v := NewValidator()

	t.Run("accepts a complete form", func(t *testing.T) {
		form := models.PostForm{
			Title:      "Cafe X",
			Address:    "Seoul Gangnam-gu 123",
			Tags:       "coffee, quiet",
			Facilities: []string{"wifi", "parking"},
		}
		assert.NoError(t, v.Validate(&form))
	})

	t.Run("reports missing fields by form name", func(t *testing.T) {
		err := v.Validate(&models.PostForm{})
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "This field is required.", verr.Fields["title"])
		assert.Equal(t, "This field is required.", verr.Fields["address"])
	})

	t.Run("rejects facility codes outside the catalog", func(t *testing.T) {
		form := models.PostForm{Title: "Cafe X", Address: "Seoul", Facilities: []string{"wifi", "helipad"}}
		err := v.Validate(&form)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields["facilities"], "helipad")
		assert.Len(t, verr.Fields, 1)
	})
}

func TestValidatePostForm_BlankFields(t *testing.T) {
	v := NewValidator()

	t.Run("whitespace-only title", func(t *testing.T) {
		_, verr := ValidatePostForm(v, &models.PostForm{Title: "   ", Address: "Seoul"}, nil, 0)
		require.NotNil(t, verr)
		assert.Equal(t, "This field is required.", verr.Fields["title"])
		assert.NotContains(t, verr.Fields, "address")
	})

	t.Run("whitespace-only address", func(t *testing.T) {
		_, verr := ValidatePostForm(v, &models.PostForm{Title: "Cafe", Address: " \t "}, nil, 0)
		require.NotNil(t, verr)
		assert.Equal(t, "This field is required.", verr.Fields["address"])
	})

	t.Run("address shorter than two characters after trimming", func(t *testing.T) {
		_, verr := ValidatePostForm(v, &models.PostForm{Title: "Cafe", Address: "  A  "}, nil, 0)
		require.NotNil(t, verr)
		assert.Contains(t, verr.Fields["address"], "at least 2")
	})
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	assert.False(t, verr.HasErrors())

	verr.Add("title", "first")
	verr.Add("title", "second")
	other := NewValidationError()
	other.Add("address", "bad")
	verr.Merge(other)
	verr.Merge(nil)

	assert.True(t, verr.HasErrors())
	assert.Equal(t, "first", verr.Fields["title"])
	assert.Equal(t, "validation failed: address: bad; title: first", verr.Error())
}

func TestInspectImages(t *testing.T) {
	t.Run("accepts images and reports sniffed type", func(t *testing.T) {
		files := multipartFiles(t, map[string][]byte{"a.png": pngHeader})
		uploads, verr := InspectImages(files, 1<<20)
		require.Nil(t, verr)
		require.Len(t, uploads, 1)
		assert.Equal(t, "image/png", uploads[0].ContentType)
	})

	t.Run("rejects non images", func(t *testing.T) {
		files := multipartFiles(t, map[string][]byte{"notes.txt": []byte("just some text")})
		uploads, verr := InspectImages(files, 1<<20)
		assert.Nil(t, uploads)
		require.NotNil(t, verr)
		assert.Contains(t, verr.Fields["image"], "notes.txt")
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		files := multipartFiles(t, map[string][]byte{"big.png": pngHeader})
		_, verr := InspectImages(files, 4)
		require.NotNil(t, verr)
		assert.Contains(t, verr.Fields["image"], "larger than")
	})
}

func multipartFiles(t *testing.T, contents map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, data := range contents {
		part, err := w.CreateFormFile("image", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"]
}

func TestValidatePostForm_CombinesFieldAndImageErrors(t *testing.T) {
	v := NewValidator()
	files := multipartFiles(t, map[string][]byte{"notes.txt": []byte("plain text")})

	uploads, verr := ValidatePostForm(v, &models.PostForm{Address: "Seoul"}, files, 1<<20)
	assert.Nil(t, uploads)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "image")

	files = multipartFiles(t, map[string][]byte{"a.png": pngHeader})
	form := &models.PostForm{Title: "  Cafe  ", Address: " Seoul Jung-gu ", Tags: " a, b "}
	uploads, verr = ValidatePostForm(v, form, nil, 1<<20)
	assert.Nil(t, verr)
	assert.Empty(t, uploads)
	assert.Equal(t, "Cafe", form.Title)
	assert.Equal(t, "Seoul Jung-gu", form.Address)

	uploads, verr = ValidatePostForm(v, &models.PostForm{Title: "Cafe", Address: "Seoul"}, files, 1<<20)
	assert.Nil(t, verr)
	assert.Len(t, uploads, 1)
}
