package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"sales-dashboard/internal/models"
)

var errPartialDateRange = errors.New("start and end must be given together")

// parseFilters reads start, end, category, region, channel and customer.
// Facets may be repeated or comma-separated.
func parseFilters(q url.Values) (models.Filters, error) {
	var f models.Filters

	dr, err := parseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		return f, err
	}
	f.DateRange = dr

	f.Categories = multiValue(q, "category")
	f.Regions = multiValue(q, "region")
	f.Channels = multiValue(q, "channel")
	f.SearchCustomer = strings.TrimSpace(q.Get("customer"))

	return f, nil
}

func parseDateRange(start, end string) (*models.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, errPartialDateRange
	}
	dr, err := models.ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

func multiValue(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parsePositiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive integer, got %q", raw)
	}
	return n, nil
}
