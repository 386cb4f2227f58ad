package dto

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMetadata(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int
	}{
		{name: "empty", total: 0, pageSize: 20, wantPages: 0},
		{name: "exact", total: 40, pageSize: 20, wantPages: 2},
		{name: "remainder", total: 41, pageSize: 20, wantPages: 3},
		{name: "single", total: 1, pageSize: 20, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPaginationMetadata(tt.total, tt.pageSize, 1)
			assert.Equal(t, tt.wantPages, m.TotalPageCount)
			assert.Equal(t, tt.total, m.TotalItemCount)
			assert.Equal(t, tt.pageSize, m.PageSize)
		})
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name               string
		total, page, size  int
		wantStart, wantEnd int
	}{
		{name: "first page", total: 45, page: 1, size: 20, wantStart: 0, wantEnd: 20},
		{name: "last partial page", total: 45, page: 3, size: 20, wantStart: 40, wantEnd: 45},
		{name: "past the end", total: 45, page: 4, size: 20, wantStart: 45, wantEnd: 45},
		{name: "invalid page", total: 45, page: 0, size: 20, wantStart: 0, wantEnd: 0},
		{name: "empty listing", total: 0, page: 1, size: 20, wantStart: 0, wantEnd: 0},
		{name: "exact last page", total: 40, page: 2, size: 20, wantStart: 20, wantEnd: 40},
		{name: "max int page", total: 45, page: math.MaxInt, size: 20, wantStart: 45, wantEnd: 45},
		{name: "max int page and size", total: 45, page: math.MaxInt, size: math.MaxInt, wantStart: 45, wantEnd: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PageBounds(tt.total, tt.page, tt.size)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
