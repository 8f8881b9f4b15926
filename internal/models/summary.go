package models

import "time"

type KPIs struct {
	TotalRevenue  float64 `json:"total"`
	SalesCount    int     `json:"num_vendas"`
	AverageTicket float64 `json:"ticket_medio"`
}

type MonthlyRevenue struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"faturacao"`
}

type ProductRevenue struct {
	Product string  `json:"product"`
	Revenue float64 `json:"faturacao"`
}

type ChannelRevenue struct {
	Channel string  `json:"channel"`
	Revenue float64 `json:"faturacao"`
}

type RegionRevenue struct {
	Region  string  `json:"region"`
	Revenue float64 `json:"faturacao"`
}

// DimensionRevenue is one slice of the distribution chart, whichever
// dimension it was grouped by.
type DimensionRevenue struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"faturacao"`
}

// DashboardView bundles everything the page renders for one filter state.
type DashboardView struct {
	Filters      Filters            `json:"filters"`
	RowCount     int                `json:"row_count"`
	KPIs         KPIs               `json:"kpis"`
	Monthly      []MonthlyRevenue   `json:"monthly"`
	TopProducts  []ProductRevenue   `json:"top_products"`
	TopN         int                `json:"top_n"`
	Dimension    Dimension          `json:"dimension"`
	Distribution []DimensionRevenue `json:"distribution"`
	Sales        []Sale             `json:"-"`
}
