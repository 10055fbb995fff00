package inventory

import (
	"fmt"
	"testing"

	"edc-panorama-api-server/internal/models"
)

func listing() []models.Asset {
	return []models.Asset{
		{Code: "2024-EDC-AA-0001", Name: "Agrafeuse", Location: "EDC", Category: "AA", State: models.StateGood, Holder: "Jean Dupont"},
		{Code: "2024-DG-IT-0001", Name: "Ordinateur", Location: "DG", Category: "IT", State: models.StateDefective, Holder: "Awa Diallo"},
		{Code: "2023-EDC-MB-0001", Name: "Chaise", Location: "EDC", Category: "MB", State: models.StateGood},
		{Code: "2023-EDC-MB-0002", Name: "Bureau", Location: "EDC", Category: "MB", State: models.StateRetired, IsArchived: true},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"empty query excludes archived", Query{}, []string{"2024-EDC-AA-0001", "2024-DG-IT-0001", "2023-EDC-MB-0001"}},
		{"search is case insensitive on holder", Query{Search: "DUPONT"}, []string{"2024-EDC-AA-0001"}},
		{"search matches code", Query{Search: "dg-it"}, []string{"2024-DG-IT-0001"}},
		{"filters combine with AND", Query{Location: "EDC", State: models.StateGood, Category: "MB"}, []string{"2023-EDC-MB-0001"}},
		{"archived never listed", Query{Search: "Bureau"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(listing(), tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() returned %d assets, want %d", len(got), len(tt.want))
			}
			for i, a := range got {
				if a.Code != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, a.Code, tt.want[i])
				}
			}
		})
	}
}

func TestArchived(t *testing.T) {
	got := Archived(listing())
	if len(got) != 1 || got[0].Code != "2023-EDC-MB-0002" {
		t.Errorf("Archived() = %+v", got)
	}
}

func TestPaginate(t *testing.T) {
	var assets []models.Asset
	for i := 0; i < 120; i++ {
		assets = append(assets, models.Asset{Code: fmt.Sprintf("C-%04d", i)})
	}

	p := Paginate(assets, 3)
	if p.TotalPages != 3 || p.Total != 120 {
		t.Errorf("TotalPages = %d, Total = %d", p.TotalPages, p.Total)
	}
	if len(p.Items) != 20 || p.Items[0].Code != "C-0100" {
		t.Errorf("page 3 has %d items starting at %q", len(p.Items), p.Items[0].Code)
	}

	if p := Paginate(assets, 0); p.Page != 1 || len(p.Items) != PageSize {
		t.Errorf("page 0 clamps to 1, got page %d with %d items", p.Page, len(p.Items))
	}
	for _, page := range []int{9, 200000000000000000} {
		if p := Paginate(assets, page); len(p.Items) != 0 || p.TotalPages != 3 {
			t.Errorf("page %d: %d items, %d total pages", page, len(p.Items), p.TotalPages)
		}
	}
	if p := Paginate(nil, 1); len(p.Items) != 0 || p.Items == nil {
		t.Errorf("empty listing: %+v", p)
	}
}
