package models

import (
	"fmt"
	"time"
)

// FilterOptions holds the selectable facet values of a canonical table.
type FilterOptions struct {
	DateMin    *time.Time `json:"date_min"`
	DateMax    *time.Time `json:"date_max"`
	Categories []string   `json:"categories"`
	Regions    []string   `json:"regions"`
	Channels   []string   `json:"channels"`
}

// DateRange is an inclusive calendar-date interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

// ParseDateRange parses two YYYY-MM-DD bounds.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return NewDateRange(s, e), nil
}

func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Filters is a conjunction of optional predicates. A nil DateRange, an empty
// facet slice or a blank SearchCustomer leaves that dimension unconstrained.
type Filters struct {
	DateRange      *DateRange `json:"date_range,omitempty"`
	Categories     []string   `json:"categories,omitempty"`
	Regions        []string   `json:"regions,omitempty"`
	Channels       []string   `json:"channels,omitempty"`
	SearchCustomer string     `json:"search_customer,omitempty"`
}

// Dimension is the grouping used by the distribution chart.
type Dimension string

const (
	DimensionChannel Dimension = "channel"
	DimensionRegion  Dimension = "region"
)

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionChannel, DimensionRegion:
		return Dimension(s), nil
	case "":
		return DimensionChannel, nil
	default:
		return "", fmt.Errorf("unknown distribution dimension %q", s)
	}
}
