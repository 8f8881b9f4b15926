package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

// CalcKPIs returns total revenue, sales count and average ticket, with the
// monetary figures rounded to cents.
func CalcKPIs(sales []models.Sale) models.KPIs {
	if len(sales) == 0 {
		return models.KPIs{}
	}

	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(decimal.NewFromFloat(s.Total))
	}
	avg := total.Div(decimal.NewFromInt(int64(len(sales))))

	return models.KPIs{
		TotalRevenue:  total.Round(2).InexactFloat64(),
		SalesCount:    len(sales),
		AverageTicket: avg.Round(2).InexactFloat64(),
	}
}

// MonthlySales sums revenue per month, oldest month first.
func MonthlySales(sales []models.Sale) []models.MonthlyRevenue {
	keys, sums := groupRevenue(sales, func(s models.Sale) time.Time { return s.Month })
	slices.SortFunc(keys, func(a, b time.Time) int { return a.Compare(b) })

	out := make([]models.MonthlyRevenue, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.MonthlyRevenue{Month: k, Revenue: sums[k].InexactFloat64()})
	}
	return out
}

// TopProducts returns the n best-selling products by revenue. Ties are
// broken by product name.
func TopProducts(sales []models.Sale, n int) []models.ProductRevenue {
	if n <= 0 {
		return []models.ProductRevenue{}
	}

	keys, sums := groupRevenue(sales, func(s models.Sale) string { return s.Product })
	slices.SortFunc(keys, func(a, b string) int {
		if c := sums[b].Cmp(sums[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	out := make([]models.ProductRevenue, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.ProductRevenue{Product: k, Revenue: sums[k].InexactFloat64()})
	}
	return out
}

// ChannelDistribution sums revenue per channel in first-appearance order.
func ChannelDistribution(sales []models.Sale) []models.ChannelRevenue {
	keys, sums := groupRevenue(sales, func(s models.Sale) string { return s.Channel })
	out := make([]models.ChannelRevenue, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.ChannelRevenue{Channel: k, Revenue: sums[k].InexactFloat64()})
	}
	return out
}

// RegionDistribution sums revenue per region in first-appearance order.
func RegionDistribution(sales []models.Sale) []models.RegionRevenue {
	keys, sums := groupRevenue(sales, func(s models.Sale) string { return s.Region })
	out := make([]models.RegionRevenue, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.RegionRevenue{Region: k, Revenue: sums[k].InexactFloat64()})
	}
	return out
}

// Distribution groups by the requested dimension for the donut chart.
func Distribution(sales []models.Sale, dim models.Dimension) []models.DimensionRevenue {
	var out []models.DimensionRevenue
	switch dim {
	case models.DimensionRegion:
		rows := RegionDistribution(sales)
		out = make([]models.DimensionRevenue, 0, len(rows))
		for _, r := range rows {
			out = append(out, models.DimensionRevenue{Label: r.Region, Revenue: r.Revenue})
		}
	default:
		rows := ChannelDistribution(sales)
		out = make([]models.DimensionRevenue, 0, len(rows))
		for _, r := range rows {
			out = append(out, models.DimensionRevenue{Label: r.Channel, Revenue: r.Revenue})
		}
	}
	return out
}

// groupRevenue sums Total per key, returning keys in first-appearance order.
func groupRevenue[K comparable](sales []models.Sale, key func(models.Sale) K) ([]K, map[K]decimal.Decimal) {
	sums := make(map[K]decimal.Decimal)
	order := make([]K, 0)

	for _, s := range sales {
		k := key(s)
		sum, exists := sums[k]
		if !exists {
			order = append(order, k)
		}
		sums[k] = sum.Add(decimal.NewFromFloat(s.Total))
	}

	return order, sums
}
