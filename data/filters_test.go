package data

import (
	"testing"

	"github.com/emzola/athenaeum/internal/validator"
)

func TestFiltersSortColumnAndDirection(t *testing.T) {
	f := Filters{Sort: "-name", SortSafeList: []string{"id", "name", "-id", "-name"}}
	if got := f.SortColumn(); got != "name" {
		t.Errorf("SortColumn() = %q, want %q", got, "name")
	}
	if got := f.SortDirection(); got != "DESC" {
		t.Errorf("SortDirection() = %q, want %q", got, "DESC")
	}

	f.Sort = "id"
	if got := f.SortDirection(); got != "ASC" {
		t.Errorf("SortDirection() = %q, want %q", got, "ASC")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unsafe sort value")
		}
	}()
	f.Sort = "name; DROP TABLE libraries"
	f.SortColumn()
}

func TestValidateFilters(t *testing.T) {
	safelist := []string{"id"}
	tests := []struct {
		name    string
		filters Filters
		valid   bool
	}{
		{"valid", Filters{Page: 1, PageSize: 20, Sort: "id", SortSafeList: safelist}, true},
		{"zero page", Filters{Page: 0, PageSize: 20, Sort: "id", SortSafeList: safelist}, false},
		{"oversized page size", Filters{Page: 1, PageSize: 101, Sort: "id", SortSafeList: safelist}, false},
		{"sort not in safelist", Filters{Page: 1, PageSize: 20, Sort: "barcode", SortSafeList: safelist}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateFilters(v, tt.filters)
			if v.Valid() != tt.valid {
				t.Errorf("expected valid = %t, errors: %v", tt.valid, v.Errors)
			}
		})
	}
}

func TestCalculateMetadata(t *testing.T) {
	metadata := CalculateMetadata(103, 2, 20)
	if metadata.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2", metadata.CurrentPage)
	}
	if metadata.FirstPage != 1 {
		t.Errorf("FirstPage = %d, want 1", metadata.FirstPage)
	}
	if metadata.LastPage != 6 {
		t.Errorf("LastPage = %d, want 6", metadata.LastPage)
	}
	if metadata.TotalRecords != 103 {
		t.Errorf("TotalRecords = %d, want 103", metadata.TotalRecords)
	}

	empty := CalculateMetadata(0, 1, 20)
	if empty != (Metadata{}) {
		t.Errorf("expected empty metadata for zero records, got %+v", empty)
	}
}
