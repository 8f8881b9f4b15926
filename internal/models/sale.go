package models

import (
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// Columns is the fixed projection every source must provide.
var Columns = []string{
	"id", "date", "customer", "product", "category",
	"quantity", "unit_price", "total", "region", "channel",
}

// ExportColumns is Columns plus the derived month.
var ExportColumns = append(append([]string{}, Columns...), "month")

// Sale is one row of the canonical table.
type Sale struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Customer  string    `json:"customer"`
	Product   string    `json:"product"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Total     float64   `json:"total"`
	Region    string    `json:"region"`
	Channel   string    `json:"channel"`
	Month     time.Time `json:"month"`
}

// Record renders the sale in ExportColumns order.
func (s Sale) Record() []string {
	return []string{
		s.ID,
		s.Date.Format(DateLayout),
		s.Customer,
		s.Product,
		s.Category,
		strconv.Itoa(s.Quantity),
		strconv.FormatFloat(s.UnitPrice, 'f', -1, 64),
		strconv.FormatFloat(s.Total, 'f', -1, 64),
		s.Region,
		s.Channel,
		s.Month.Format(DateLayout),
	}
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time-of-day of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
