package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventhub/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{"?page=3&page_size=25", domain.PaginationParams{Page: 3, PageSize: 25}},
		{"?page=0&page_size=-4", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{"?page=abc&page_size=xyz", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{"?page_size=1000", domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{"?page=922337203685477590&page_size=100", domain.PaginationParams{Page: MaxPage, PageSize: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/x"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestParsePagination_HugePageKeepsOffsetInRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?page=922337203685477590&page_size=100", nil)
	params := ParsePagination(r)
	assert.Positive(t, params.Offset())
	assert.Equal(t, (MaxPage-1)*MaxPageSize, params.Offset())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)

	last := NewPaginationMeta(3, 10, 25)
	assert.False(t, last.HasNextPage)

	empty := NewPaginationMeta(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPrevPage)

	assert.Equal(t, 0, NewPaginationMeta(1, 0, 5).TotalPages)
}
