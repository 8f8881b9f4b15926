package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/datasource"
	"sales-dashboard/internal/models"
)

const (
	MinTopN = 3
	MaxTopN = 20
)

// Loader produces the canonical table.
type Loader interface {
	Load(ctx context.Context) ([]models.Sale, error)
}

// Snapshot is the immutable state of one session: the canonical table and
// the filter options derived from it.
type Snapshot struct {
	Sales    []models.Sale
	Options  models.FilterOptions
	LoadedAt time.Time
}

// Query is one filter state of the dashboard.
type Query struct {
	Filters   models.Filters
	TopN      int
	Dimension models.Dimension
}

// Analytics loads the canonical table once and answers every filter and
// aggregation request from that snapshot.
type Analytics struct {
	loader Loader
	logger *slog.Logger

	once     sync.Once
	done     atomic.Bool
	snapshot *Snapshot
	err      error

	queries atomic.Int64
}

func NewAnalytics(loader Loader, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		loader: loader,
		logger: logger,
	}
}

// NewAnalyticsWithData returns an Analytics already holding sales.
func NewAnalyticsWithData(sales []models.Sale, logger *slog.Logger) *Analytics {
	a := NewAnalytics(nil, logger)
	a.once.Do(func() {
		a.snapshot = newSnapshot(sales)
		a.done.Store(true)
	})
	return a
}

func newSnapshot(sales []models.Sale) *Snapshot {
	sales = slices.Clone(sales)
	if sales == nil {
		sales = []models.Sale{}
	}
	return &Snapshot{
		Sales:    sales,
		Options:  datasource.Options(sales),
		LoadedAt: time.Now(),
	}
}

// Load runs the loader on first use. Later calls return the same snapshot
// or the same error.
func (a *Analytics) Load(ctx context.Context) (*Snapshot, error) {
	a.once.Do(func() {
		defer a.done.Store(true)
		start := time.Now()
		sales, err := a.loader.Load(ctx)
		if err != nil {
			a.err = err
			a.logger.Error("session load failed", "error", err)
			return
		}
		a.snapshot = newSnapshot(sales)
		a.logger.Info("session snapshot ready",
			"records", len(sales),
			"categories", len(a.snapshot.Options.Categories),
			"regions", len(a.snapshot.Options.Regions),
			"channels", len(a.snapshot.Options.Channels),
			"duration", time.Since(start),
		)
	})
	return a.snapshot, a.err
}

func (a *Analytics) Options(ctx context.Context) (models.FilterOptions, error) {
	snap, err := a.Load(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return snap.Options, nil
}

// Filter returns the filtered view of the canonical table.
func (a *Analytics) Filter(ctx context.Context, f models.Filters) ([]models.Sale, error) {
	snap, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.queries.Add(1)
	return ApplyFilters(snap.Sales, f), nil
}

// Dashboard filters once and computes the KPIs and chart series of the view
// concurrently.
func (a *Analytics) Dashboard(ctx context.Context, q Query) (*models.DashboardView, error) {
	sales, err := a.Filter(ctx, q.Filters)
	if err != nil {
		return nil, err
	}

	view := &models.DashboardView{
		Filters:   q.Filters,
		RowCount:  len(sales),
		TopN:      ClampTopN(q.TopN),
		Dimension: q.Dimension,
		Sales:     sales,
	}
	if view.Dimension == "" {
		view.Dimension = models.DimensionChannel
	}

	var g errgroup.Group
	g.Go(func() error {
		view.KPIs = CalcKPIs(sales)
		return nil
	})
	g.Go(func() error {
		view.Monthly = MonthlySales(sales)
		return nil
	})
	g.Go(func() error {
		view.TopProducts = TopProducts(sales, view.TopN)
		return nil
	})
	g.Go(func() error {
		view.Distribution = Distribution(sales, view.Dimension)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

// ClampTopN bounds the top-N control the way the page slider does.
func ClampTopN(n int) int {
	return min(max(n, MinTopN), MaxTopN)
}

// Stats reports session state for monitoring.
func (a *Analytics) Stats() map[string]any {
	done := a.done.Load()
	stats := map[string]any{
		"loaded":  done && a.snapshot != nil,
		"queries": a.queries.Load(),
	}
	if !done {
		return stats
	}
	if a.snapshot != nil {
		stats["record_count"] = len(a.snapshot.Sales)
		stats["loaded_at"] = a.snapshot.LoadedAt
		stats["categories"] = len(a.snapshot.Options.Categories)
		stats["regions"] = len(a.snapshot.Options.Regions)
		stats["channels"] = len(a.snapshot.Options.Channels)
	}
	if a.err != nil {
		stats["load_error"] = a.err.Error()
	}
	return stats
}
