package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/verdantlabs/verdant/api"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// valueOr renders an optional string field for text output.
func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

// pageFooter renders pagination metadata for text output.
func pageFooter(number, totalPages, totalElements int) string {
	if totalPages == 0 {
		return "no results"
	}
	return fmt.Sprintf("page %d of %d (%d total)", number+1, totalPages, totalElements)
}

// loadUpload opens an image file for multipart submission. The content type
// is derived from the file extension, defaulting to JPEG like the mobile
// client did.
func loadUpload(path string) (api.Upload, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.Upload{}, nil, fmt.Errorf("open image: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return api.Upload{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Reader:      f,
	}, f.Close, nil
}

// prompt reads one trimmed line from r after printing the label.
func prompt(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
