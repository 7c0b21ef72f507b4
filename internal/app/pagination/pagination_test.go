package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avyure/go_workout_backend/internal/app/pagination"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		name         string
		totalRecords int
		pageSize     int
		want         int
	}{
		{"no records", 0, 10, 0},
		{"less than one page", 3, 10, 1},
		{"exact multiple", 20, 10, 2},
		{"remainder adds a page", 21, 10, 3},
		{"page size one", 5, 1, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pagination.TotalPages(tc.totalRecords, tc.pageSize))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Offset(1, 25))
	assert.Equal(t, 25, pagination.Offset(2, 25))
	assert.Equal(t, 90, pagination.Offset(10, 10))
}

func TestNewPage(t *testing.T) {
	page := pagination.NewPage([]string{"a", "b"}, 2, 3, 11)

	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 3, page.PageNumber)
	assert.Equal(t, 11, page.TotalRecords)
	assert.Equal(t, 6, page.TotalPages)
}

func TestNewPageEmpty(t *testing.T) {
	page := pagination.NewPage[string](nil, 10, 1, 0)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalRecords)
	assert.Zero(t, page.TotalPages)
}
