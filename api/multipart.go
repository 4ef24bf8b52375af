package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// Upload is a binary part of a multipart submission, typically an image.
type Upload struct {
	// Name is the file name sent with the part.
	Name string

	// ContentType is the MIME type of the content (e.g. "image/jpeg").
	ContentType string

	// Reader supplies the content. It is consumed when the body is built.
	Reader io.Reader
}

// MultipartBody encodes text fields and file parts into a multipart/form-data
// body. The body is returned as bytes so the retry loop can replay it.
// Fields are written in sorted key order for deterministic output.
func MultipartBody(fields map[string]string, files map[string]Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	fileKeys := make([]string, 0, len(files))
	for k := range files {
		fileKeys = append(fileKeys, k)
	}
	sort.Strings(fileKeys)
	for _, k := range fileKeys {
		up := files[k]
		contentType := up.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, k, up.Name))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", k, err)
		}
		if _, err := io.Copy(part, up.Reader); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
