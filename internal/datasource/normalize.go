package datasource

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 8
)

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006/01/02",
}

// Report counts the per-row repairs made during normalization.
type Report struct {
	RowsRead         int
	DroppedDates     int
	RecomputedTotals int
	CoercedNumbers   int
}

func (r *Report) add(o Report) {
	r.RowsRead += o.RowsRead
	r.DroppedDates += o.DroppedDates
	r.RecomputedTotals += o.RecomputedTotals
	r.CoercedNumbers += o.CoercedNumbers
}

type columnIndex map[string]int

func indexColumns(columns []string) columnIndex {
	idx := make(columnIndex, len(columns))
	for i, c := range columns {
		name := strings.ToLower(strings.TrimSpace(c))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

func missingColumns(idx columnIndex) []string {
	var missing []string
	for _, c := range models.Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func (idx columnIndex) get(record []string, column string) string {
	i := idx[column]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

type batchResult struct {
	sales  []models.Sale
	report Report
}

// Normalize builds the canonical table from raw rows. Bad dates drop the
// row; bad numbers are coerced. Output order matches input order.
func Normalize(ctx context.Context, raw *RawTable) ([]models.Sale, Report, error) {
	idx := indexColumns(raw.Columns)
	if missing := missingColumns(idx); len(missing) > 0 {
		return nil, Report{}, apperrors.SchemaMismatch(missing)
	}

	batches := (len(raw.Rows) + batchSize - 1) / batchSize
	results := make([]batchResult, batches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for b := 0; b < batches; b++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lo := b * batchSize
			hi := min(lo+batchSize, len(raw.Rows))
			results[b] = normalizeBatch(raw.Rows[lo:hi], idx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Report{}, err
	}

	var report Report
	size := 0
	for _, r := range results {
		size += len(r.sales)
	}
	sales := make([]models.Sale, 0, size)
	for _, r := range results {
		sales = append(sales, r.sales...)
		report.add(r.report)
	}

	return sales, report, nil
}

func normalizeBatch(rows [][]string, idx columnIndex) batchResult {
	out := batchResult{sales: make([]models.Sale, 0, len(rows))}
	out.report.RowsRead = len(rows)

	for _, record := range rows {
		sale, ok := normalizeRow(record, idx, &out.report)
		if !ok {
			out.report.DroppedDates++
			continue
		}
		out.sales = append(out.sales, sale)
	}

	return out
}

func normalizeRow(record []string, idx columnIndex, report *Report) (models.Sale, bool) {
	date, ok := parseDate(idx.get(record, "date"))
	if !ok {
		return models.Sale{}, false
	}

	quantity, ok := parseQuantity(idx.get(record, "quantity"))
	if !ok {
		report.CoercedNumbers++
	}
	unitPrice, ok := parseUnitPrice(idx.get(record, "unit_price"))
	if !ok {
		report.CoercedNumbers++
	}
	total, ok := parseNumber(idx.get(record, "total"))
	if !ok {
		total = float64(quantity) * unitPrice
		report.RecomputedTotals++
		if math.IsInf(total, 0) {
			total = 0
			report.CoercedNumbers++
		}
	}

	return models.Sale{
		ID:        strings.TrimSpace(idx.get(record, "id")),
		Date:      date,
		Customer:  strings.TrimSpace(idx.get(record, "customer")),
		Product:   strings.TrimSpace(idx.get(record, "product")),
		Category:  strings.TrimSpace(idx.get(record, "category")),
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total,
		Region:    strings.TrimSpace(idx.get(record, "region")),
		Channel:   strings.TrimSpace(idx.get(record, "channel")),
		Month:     models.MonthStart(date),
	}, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), true
		}
	}
	return time.Time{}, false
}

// parseNumber accepts finite reals only.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseQuantity truncates fractional quantities; negative or invalid
// values become zero. An empty cell counts as valid-but-absent.
func parseQuantity(s string) (int, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, ok := parseNumber(s)
	if !ok || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func parseUnitPrice(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	f, ok := parseNumber(s)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}
