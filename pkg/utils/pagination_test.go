package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageSize  int
		total     int
		wantStart int
		wantEnd   int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{name: "First page", page: 1, pageSize: 2, total: 5, wantStart: 0, wantEnd: 2, wantPages: 3, wantNext: true},
		{name: "Last partial page", page: 3, pageSize: 2, total: 5, wantStart: 4, wantEnd: 5, wantPages: 3, wantPrev: true},
		{name: "Page past the end", page: 9, pageSize: 2, total: 5, wantStart: 5, wantEnd: 5, wantPages: 3, wantPrev: true},
		{name: "Invalid input normalised", page: 0, pageSize: 0, total: 4, wantStart: 0, wantEnd: 4, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.pageSize)
			p.SetTotal(int64(tt.total))
			start, end := p.Bounds(tt.total)

			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
		})
	}
}
