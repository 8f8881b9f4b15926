package services

import (
	"strings"

	"sales-dashboard/internal/models"
)

// ApplyFilters returns the rows of sales matching every predicate in f, in
// input order. The result is always a new slice.
func ApplyFilters(sales []models.Sale, f models.Filters) []models.Sale {
	categories := toSet(f.Categories)
	regions := toSet(f.Regions)
	channels := toSet(f.Channels)
	query := strings.ToLower(strings.TrimSpace(f.SearchCustomer))

	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if f.DateRange != nil && !f.DateRange.Contains(s.Date) {
			continue
		}
		if categories != nil && !categories[s.Category] {
			continue
		}
		if regions != nil && !regions[s.Region] {
			continue
		}
		if channels != nil && !channels[s.Channel] {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(s.Customer), query) {
			continue
		}
		out = append(out, s)
	}

	return out
}

// toSet returns nil for an empty selection, meaning no constraint.
func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
