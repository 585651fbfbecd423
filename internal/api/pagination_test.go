package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageMetaMath(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		wantPages   int
		next, prev  bool
	}{
		{1, 10, 0, 0, false, false},
		{1, 10, 1, 1, false, false},
		{1, 10, 10, 1, false, false},
		{1, 10, 11, 2, true, false},
		{2, 10, 11, 2, false, true},
		{3, 10, 25, 3, false, true},
		{2, 10, 25, 3, true, true},
		{1, 100, 250, 3, true, false},
	}
	for _, tc := range cases {
		meta := newPageMeta(pageParams{Page: tc.page, Limit: tc.limit}, tc.total)
		assert.Equal(t, tc.wantPages, meta.TotalPages, "pages for %+v", tc)
		assert.Equal(t, tc.next, meta.HasNextPage, "next for %+v", tc)
		assert.Equal(t, tc.prev, meta.HasPrevPage, "prev for %+v", tc)
		assert.Equal(t, tc.total, meta.TotalCount)
		assert.Equal(t, tc.limit, meta.Limit)
	}
}
