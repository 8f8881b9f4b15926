package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sales-dashboard/internal/config"
	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

// RawTable is what a source hands to normalization: a header and string
// cells, with absent values as empty strings.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Source fetches the raw sales rows of one configured location.
type Source interface {
	Fetch(ctx context.Context) (*RawTable, error)
	Locator() string
}

// NewSource picks the source described by cfg.
func NewSource(cfg config.DataConfig) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.InvalidConfiguration(err)
	}

	switch cfg.Source {
	case config.SourceCSV:
		return NewCSVSource(cfg.CSVPath), nil
	default:
		driver, err := NewDriver(cfg.Driver)
		if err != nil {
			return nil, err
		}
		return NewSQLSource(driver, cfg.DBURI), nil
	}
}

// Loader turns a Source into the canonical table.
type Loader struct {
	source Source
	logger *slog.Logger
}

func NewLoader(source Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, logger: logger}
}

func (l *Loader) Load(ctx context.Context) ([]models.Sale, error) {
	ctx, span := observability.StartSpan(ctx, "datasource.load")
	span.SetTag("locator", l.source.Locator())
	defer func() {
		span.Finish()
		l.logger.Debug("load span finished", "span", span)
	}()

	start := time.Now()
	raw, err := l.source.Fetch(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	sales, report, err := Normalize(ctx, raw)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	l.logger.Info("sales loaded",
		"locator", l.source.Locator(),
		"rows_read", report.RowsRead,
		"rows_kept", len(sales),
		"rows_dropped", report.DroppedDates,
		"totals_recomputed", report.RecomputedTotals,
		"numbers_coerced", report.CoercedNumbers,
		"duration", time.Since(start),
	)

	return sales, nil
}

// LoadSales loads and normalizes the sales table selected by cfg.
func LoadSales(ctx context.Context, cfg config.DataConfig) ([]models.Sale, error) {
	source, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}
	sales, err := NewLoader(source, slog.Default()).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return sales, nil
}
