package datasource

import (
	"slices"

	"sales-dashboard/internal/models"
)

// Options derives the filter facets of a canonical table.
func Options(sales []models.Sale) models.FilterOptions {
	opts := models.FilterOptions{
		Categories: []string{},
		Regions:    []string{},
		Channels:   []string{},
	}
	if len(sales) == 0 {
		return opts
	}

	minDate, maxDate := sales[0].Date, sales[0].Date
	for _, s := range sales[1:] {
		if s.Date.Before(minDate) {
			minDate = s.Date
		}
		if s.Date.After(maxDate) {
			maxDate = s.Date
		}
	}
	minDate, maxDate = models.DateOf(minDate), models.DateOf(maxDate)
	opts.DateMin = &minDate
	opts.DateMax = &maxDate

	opts.Categories = distinct(sales, func(s models.Sale) string { return s.Category })
	opts.Regions = distinct(sales, func(s models.Sale) string { return s.Region })
	opts.Channels = distinct(sales, func(s models.Sale) string { return s.Channel })

	return opts
}

func distinct(sales []models.Sale, field func(models.Sale) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, s := range sales {
		v := field(s)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
