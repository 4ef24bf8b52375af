package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/verdant/api"
)

func TestPage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		page    api.Page[string]
		wantErr bool
	}{
		{
			name: "consistent metadata",
			page: api.Page[string]{TotalElements: 23, TotalPages: 3, Size: 10, Number: 0},
		},
		{
			name: "exact multiple",
			page: api.Page[string]{TotalElements: 20, TotalPages: 2, Size: 10, Number: 1},
		},
		{
			name: "empty collection",
			page: api.Page[string]{TotalElements: 0, TotalPages: 0, Size: 10, Number: 0},
		},
		{
			name:    "total pages off by one",
			page:    api.Page[string]{TotalElements: 23, TotalPages: 2, Size: 10, Number: 0},
			wantErr: true,
		},
		{
			name:    "negative page number",
			page:    api.Page[string]{TotalElements: 10, TotalPages: 1, Size: 10, Number: -1},
			wantErr: true,
		},
		{
			name:    "negative size",
			page:    api.Page[string]{TotalElements: 10, TotalPages: 1, Size: -1, Number: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodePage(t *testing.T) {
	data := []byte(`{"content":["a","b"],"totalElements":12,"totalPages":2,"size":10,"number":1}`)

	page, err := api.DecodePage[string]("list plants", data)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, page.Content)
	assert.Equal(t, 12, page.TotalElements)
	assert.Equal(t, 1, page.Number)
}

func TestDecodePage_InconsistentMetadata(t *testing.T) {
	data := []byte(`{"content":[],"totalElements":12,"totalPages":5,"size":10,"number":0}`)

	_, err := api.DecodePage[string]("list plants", data)

	var parseErr *api.ParseError
	require.ErrorAs(t, err, &parseErr)
}
