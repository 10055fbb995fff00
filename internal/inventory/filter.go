package inventory

import (
	"strings"

	"edc-panorama-api-server/internal/models"
)

// PageSize is the number of assets returned per listing page.
const PageSize = 50

// Query narrows the primary asset listing.
type Query struct {
	Search   string `form:"search"`
	Location string `form:"location"`
	Category string `form:"category"`
	State    string `form:"state"`
	Page     int    `form:"page"`
}

// Filter keeps non-archived assets matching every criterion of q. The search
// term is matched case-insensitively against code, name, holder and location.
func Filter(assets []models.Asset, q Query) []models.Asset {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if a.IsArchived {
			continue
		}
		if term != "" && !matchesSearch(a, term) {
			continue
		}
		if q.Location != "" && a.Location != q.Location {
			continue
		}
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.State != "" && a.State != q.State {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesSearch(a models.Asset, term string) bool {
	for _, v := range []string{a.Code, a.Name, a.Holder, a.Location} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// Archived returns the soft-deleted assets.
func Archived(assets []models.Asset) []models.Asset {
	out := []models.Asset{}
	for _, a := range assets {
		if a.IsArchived {
			out = append(out, a)
		}
	}
	return out
}

// Page is one slice of a filtered listing.
type Page struct {
	Items      []models.Asset `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
}

// Paginate returns the requested 1-based page. Out of range pages are empty.
func Paginate(assets []models.Asset, page int) Page {
	if page < 1 {
		page = 1
	}
	total := len(assets)
	totalPages := (total + PageSize - 1) / PageSize
	if page > totalPages {
		return Page{Items: []models.Asset{}, Page: page, TotalPages: totalPages, Total: total}
	}
	start := (page - 1) * PageSize
	end := min(start+PageSize, total)
	return Page{Items: assets[start:end], Page: page, TotalPages: totalPages, Total: total}
}
