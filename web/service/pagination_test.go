package service

import "testing"

func TestClampPage(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		max           int
		wantPage      int
		wantPerPage   int
	}{
		{"defaults pass through", 2, 10, DefaultPerPage, 2, 10},
		{"zero page becomes first", 0, 10, DefaultPerPage, 1, 10},
		{"negative page becomes first", -3, 10, DefaultPerPage, 1, 10},
		{"per page capped", 1, 100, DefaultPerPage, 1, DefaultPerPage},
		{"unset per page falls back to default", 1, 0, DefaultPerPage, 1, DefaultPerPage},
		{"negative per page falls back to default", 1, -1, DefaultPerPage, 1, DefaultPerPage},
		{"user listing default under the higher cap", 1, 0, 50, 1, DefaultPerPage},
		{"user listing cap", 1, 500, 50, 1, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, perPage := clampPage(tc.page, tc.perPage, tc.max)
			if page != tc.wantPage || perPage != tc.wantPerPage {
				t.Errorf("clampPage(%d, %d, %d) = (%d, %d), expected (%d, %d)",
					tc.page, tc.perPage, tc.max, page, perPage, tc.wantPage, tc.wantPerPage)
			}
		})
	}
}

func TestPageMath(t *testing.T) {
	page := Page[int]{Items: []int{1, 2, 3}, Total: 52, Page: 2, PerPage: 25}
	if got := page.Pages(); got != 3 {
		t.Errorf("Pages() = %d, expected 3", got)
	}
	if !page.HasPrev() {
		t.Error("HasPrev() = false on page 2")
	}
	if !page.HasNext() {
		t.Error("HasNext() = false with 3 pages")
	}

	last := Page[int]{Total: 52, Page: 3, PerPage: 25}
	if last.HasNext() {
		t.Error("HasNext() = true on the last page")
	}

	empty := Page[int]{Total: 0, Page: 1, PerPage: 25}
	if got := empty.Pages(); got != 0 {
		t.Errorf("Pages() = %d on empty result, expected 0", got)
	}
	if empty.HasNext() || empty.HasPrev() {
		t.Error("empty result should have no neighbors")
	}

	if got := offsetFor(3, 25); got != 50 {
		t.Errorf("offsetFor(3, 25) = %d, expected 50", got)
	}
}
