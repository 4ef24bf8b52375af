package api_test

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/verdant/api"
)

func TestMultipartBody_RoundTrip(t *testing.T) {
	body, contentType, err := api.MultipartBody(
		map[string]string{"name": "Fern", "plantId": "p-1"},
		map[string]api.Upload{
			"image": {
				Name:        "fern.jpg",
				ContentType: "image/jpeg",
				Reader:      strings.NewReader("jpegbytes"),
			},
		},
	)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	got := map[string]string{}
	var fileName, fileType, fileContent string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			fileName = part.FileName()
			fileType = part.Header.Get("Content-Type")
			fileContent = string(data)
			continue
		}
		got[part.FormName()] = string(data)
	}

	assert.Equal(t, map[string]string{"name": "Fern", "plantId": "p-1"}, got)
	assert.Equal(t, "fern.jpg", fileName)
	assert.Equal(t, "image/jpeg", fileType)
	assert.Equal(t, "jpegbytes", fileContent)
}

func TestMultipartBody_DefaultsContentType(t *testing.T) {
	body, contentType, err := api.MultipartBody(nil, map[string]api.Upload{
		"image": {Name: "raw.bin", Reader: strings.NewReader("x")},
	})
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
}
