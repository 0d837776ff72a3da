package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{name: "defaults", page: 0, size: 0, wantPage: 1, wantSize: 20, wantOffset: 0},
		{name: "capped", page: 2, size: 500, wantPage: 2, wantSize: 100, wantOffset: 100},
		{name: "regular", page: 3, size: 10, wantPage: 3, wantSize: 10, wantOffset: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.Limit())
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestNewPagedResult(t *testing.T) {
	r := NewPagedResult([]int{1, 2}, 21, NewPagination(1, 10))

	assert.Equal(t, 3, r.TotalPages)
	assert.Equal(t, int64(21), r.Total)
	assert.Equal(t, []int{1, 2}, r.Items)
}
