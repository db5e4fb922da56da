package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	tests := []struct {
		name             string
		in               PageRequest
		wantPage, wantSz int
		wantOffset       int
	}{
		{"zero_values", PageRequest{}, 1, DefaultPageSize, 0},
		{"explicit", PageRequest{Page: 3, PageSize: 10}, 3, 10, 20},
		{"clamps_size", PageRequest{Page: 2, PageSize: 1000}, 2, MaxPageSize, MaxPageSize},
		{"negative_page", PageRequest{Page: -4, PageSize: 5}, 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Defaults()
			if p.Page != tt.wantPage || p.PageSize != tt.wantSz {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", p.Page, p.PageSize, tt.wantPage, tt.wantSz)
			}
			if p.Offset() != tt.wantOffset {
				t.Errorf("got offset %d, want %d", p.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	t.Run("computes total pages", func(t *testing.T) {
		resp := NewPageResponse([]int{1, 2}, 1, 2, 5)
		if resp.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", resp.TotalPages)
		}
	})

	t.Run("nil data becomes empty slice", func(t *testing.T) {
		resp := NewPageResponse[int](nil, 1, 20, 0)
		if resp.Data == nil || len(resp.Data) != 0 {
			t.Errorf("expected empty slice, got %v", resp.Data)
		}
		if resp.TotalPages != 0 {
			t.Errorf("expected 0 pages, got %d", resp.TotalPages)
		}
	})
}
