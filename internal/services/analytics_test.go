package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

type countingLoader struct {
	calls atomic.Int32
	sales []models.Sale
	err   error
}

func (l *countingLoader) Load(context.Context) ([]models.Sale, error) {
	l.calls.Add(1)
	return l.sales, l.err
}

func TestAnalytics_LoadsOnce(t *testing.T) {
	loader := &countingLoader{sales: scenario()}
	a := NewAnalytics(loader, observability.Discard())

	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 8)
	for i := range snaps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := a.Load(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, s := range snaps {
		assert.Same(t, snaps[0], s)
	}
	assert.Len(t, snaps[0].Sales, 3)
	assert.False(t, snaps[0].LoadedAt.IsZero())
}

func TestAnalytics_CachesError(t *testing.T) {
	loadErr := errors.New("boom")
	loader := &countingLoader{err: loadErr}
	a := NewAnalytics(loader, observability.Discard())

	_, err := a.Load(context.Background())
	assert.ErrorIs(t, err, loadErr)
	_, err = a.Options(context.Background())
	assert.ErrorIs(t, err, loadErr)
	_, err = a.Dashboard(context.Background(), Query{})
	assert.ErrorIs(t, err, loadErr)

	assert.Equal(t, int32(1), loader.calls.Load())

	stats := a.Stats()
	assert.Equal(t, false, stats["loaded"])
	assert.Equal(t, "boom", stats["load_error"])
}

func TestAnalytics_SnapshotIsIsolatedFromCaller(t *testing.T) {
	sales := scenario()
	a := NewAnalyticsWithData(sales, observability.Discard())

	sales[0].Total = 9999

	kpis, err := a.Dashboard(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 180.0, kpis.KPIs.TotalRevenue)
}

func TestAnalytics_Dashboard(t *testing.T) {
	sales := []models.Sale{
		{ID: "1", Date: day(2023, 1, 5), Product: "A", Category: "K", Region: "Norte", Channel: "Online", Total: 100, Month: day(2023, 1, 1)},
		{ID: "2", Date: day(2023, 2, 10), Product: "B", Category: "K", Region: "Sul", Channel: "Loja", Total: 50, Month: day(2023, 2, 1)},
		{ID: "3", Date: day(2023, 2, 15), Product: "A", Category: "K", Region: "Norte", Channel: "Loja", Total: 30, Month: day(2023, 2, 1)},
		{ID: "4", Date: day(2023, 2, 20), Product: "C", Category: "Z", Region: "Sul", Channel: "Online", Total: 5, Month: day(2023, 2, 1)},
	}
	a := NewAnalyticsWithData(sales, observability.Discard())

	view, err := a.Dashboard(context.Background(), Query{
		Filters:   models.Filters{Categories: []string{"K"}},
		TopN:      1,
		Dimension: models.DimensionRegion,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, view.RowCount)
	assert.Len(t, view.Sales, 3)
	assert.Equal(t, models.KPIs{TotalRevenue: 180, SalesCount: 3, AverageTicket: 60}, view.KPIs)
	assert.Len(t, view.Monthly, 2)
	assert.Equal(t, MinTopN, view.TopN)
	assert.Len(t, view.TopProducts, 2)
	assert.Equal(t, []models.DimensionRevenue{{Label: "Norte", Revenue: 130}, {Label: "Sul", Revenue: 50}}, view.Distribution)

	view, err = a.Dashboard(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, models.DimensionChannel, view.Dimension)
	assert.Equal(t, 4, view.RowCount)
}

func TestClampTopN(t *testing.T) {
	assert.Equal(t, MinTopN, ClampTopN(0))
	assert.Equal(t, 10, ClampTopN(10))
	assert.Equal(t, MaxTopN, ClampTopN(100))
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalyticsWithData(scenario(), observability.Discard())

	_, err := a.Filter(context.Background(), models.Filters{})
	require.NoError(t, err)

	stats := a.Stats()
	assert.Equal(t, true, stats["loaded"])
	assert.Equal(t, 3, stats["record_count"])
	assert.Equal(t, int64(1), stats["queries"])
}
