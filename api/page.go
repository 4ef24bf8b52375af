package api

import "fmt"

// Page is one bounded slice of a larger server-side collection. Page numbers
// are zero-based.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// Validate checks the pagination metadata for internal consistency:
// totalPages must equal ceil(totalElements/size) and the page number must be
// zero-based and in range.
func (p Page[T]) Validate() error {
	if p.Size < 0 || p.TotalElements < 0 || p.TotalPages < 0 {
		return fmt.Errorf("negative pagination metadata (size=%d totalElements=%d totalPages=%d)",
			p.Size, p.TotalElements, p.TotalPages)
	}
	if p.Size > 0 {
		want := (p.TotalElements + p.Size - 1) / p.Size
		if p.TotalPages != want {
			return fmt.Errorf("totalPages=%d, want ceil(%d/%d)=%d",
				p.TotalPages, p.TotalElements, p.Size, want)
		}
	}
	if p.Number < 0 {
		return fmt.Errorf("page number %d is negative", p.Number)
	}
	return nil
}

// DecodePage unmarshals a paginated response and validates its metadata at
// the boundary. Inconsistent metadata is reported as a parse error.
func DecodePage[T any](op string, data []byte) (Page[T], error) {
	var page Page[T]
	if err := DecodeJSON(op, data, &page); err != nil {
		return Page[T]{}, err
	}
	if err := page.Validate(); err != nil {
		return Page[T]{}, NewParseError(op, err)
	}
	return page, nil
}
