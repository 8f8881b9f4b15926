package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func sale(id string, date time.Time, customer, product, category string, qty int, price float64, region, channel string) models.Sale {
	return models.Sale{
		ID:        id,
		Date:      date,
		Customer:  customer,
		Product:   product,
		Category:  category,
		Quantity:  qty,
		UnitPrice: price,
		Total:     float64(qty) * price,
		Region:    region,
		Channel:   channel,
		Month:     models.MonthStart(date),
	}
}

func createTestAnalytics() *services.Analytics {
	testData := []models.Sale{
		sale("1", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), "Ana Silva", "Portátil", "Eletrónica", 1, 100, "Norte", "Online"),
		sale("2", time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), "Bruno Costa", "Rato", "Eletrónica", 2, 25, "Centro", "Loja"),
		sale("3", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), "Carla Sousa", "Portátil", "Eletrónica", 1, 30, "Norte", "Online"),
		sale("4", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), "Ana Silva", "Cadeira", "Mobiliário", 2, 45.5, "Sul", "Loja"),
	}
	return services.NewAnalyticsWithData(testData, testLogger())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()
	handlers := NewAPIHandlers(analytics, logger, 10)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewAPIHandlers() should set analytics field")
	}
	if handlers.defaultTopN != 10 {
		t.Errorf("defaultTopN = %d, want 10", handlers.defaultTopN)
	}
}

func TestAPIHandlers_HandleOptions(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	w := httptest.NewRecorder()
	handlers.HandleOptions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != cacheControl {
		t.Errorf("Cache-Control = %q, want %q", cc, cacheControl)
	}

	env := decode(t, w)
	var opts models.FilterOptions
	if err := json.Unmarshal(env.Data, &opts); err != nil {
		t.Fatalf("failed to decode options: %v", err)
	}

	if want := []string{"Eletrónica", "Mobiliário"}; strings.Join(opts.Categories, ",") != strings.Join(want, ",") {
		t.Errorf("categories = %v, want %v", opts.Categories, want)
	}
	if want := []string{"Centro", "Norte", "Sul"}; strings.Join(opts.Regions, ",") != strings.Join(want, ",") {
		t.Errorf("regions = %v, want %v", opts.Regions, want)
	}
	if opts.DateMin == nil || !opts.DateMin.Equal(time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date_min = %v", opts.DateMin)
	}
	if opts.DateMax == nil || !opts.DateMax.Equal(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date_max = %v", opts.DateMax)
	}
}

func TestAPIHandlers_HandleSales(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantCount int
	}{
		{"no filters", "", http.StatusOK, 4},
		{"category", "?category=Mobili%C3%A1rio", http.StatusOK, 1},
		{"comma separated channels", "?channel=Online,Loja", http.StatusOK, 4},
		{"repeated regions", "?region=Norte&region=Sul", http.StatusOK, 3},
		{"date range", "?start=2023-02-01&end=2023-02-28", http.StatusOK, 2},
		{"customer search", "?customer=ana", http.StatusOK, 2},
		{"unknown category", "?category=Brinquedos", http.StatusOK, 0},
		{"partial date range", "?start=2023-02-01", http.StatusBadRequest, 0},
		{"invalid date", "?start=2023-02-01&end=fevereiro", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sales"+tt.query, nil)
			w := httptest.NewRecorder()
			handlers.HandleSales(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}

			env := decode(t, w)
			if tt.wantCode != http.StatusOK {
				if env.Success || env.Error == nil || env.Error.Code != "BAD_REQUEST" {
					t.Errorf("expected BAD_REQUEST envelope, got %+v", env)
				}
				return
			}

			var data struct {
				Count int           `json:"count"`
				Sales []models.Sale `json:"sales"`
			}
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("failed to decode sales: %v", err)
			}
			if data.Count != tt.wantCount || len(data.Sales) != tt.wantCount {
				t.Errorf("count = %d (%d rows), want %d", data.Count, len(data.Sales), tt.wantCount)
			}
		})
	}
}

func TestAPIHandlers_HandleKPIs(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis?category=Eletr%C3%B3nica", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var kpis models.KPIs
	if err := json.Unmarshal(decode(t, w).Data, &kpis); err != nil {
		t.Fatalf("failed to decode kpis: %v", err)
	}
	if kpis.TotalRevenue != 180 || kpis.SalesCount != 3 || kpis.AverageTicket != 60 {
		t.Errorf("kpis = %+v, want {180 3 60}", kpis)
	}
}

func TestAPIHandlers_HandleMonthlySales(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	req := httptest.NewRequest(http.MethodGet, "/api/monthly-sales", nil)
	w := httptest.NewRecorder()
	handlers.HandleMonthlySales(w, req)

	var monthly []models.MonthlyRevenue
	if err := json.Unmarshal(decode(t, w).Data, &monthly); err != nil {
		t.Fatalf("failed to decode monthly sales: %v", err)
	}

	want := []float64{100, 80, 91}
	if len(monthly) != len(want) {
		t.Fatalf("got %d months, want %d", len(monthly), len(want))
	}
	for i, m := range monthly {
		if m.Revenue != want[i] {
			t.Errorf("month %s revenue = %v, want %v", m.Month.Format("2006-01"), m.Revenue, want[i])
		}
	}
}

func TestAPIHandlers_HandleTopProducts(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{"default n", "", http.StatusOK, 3},
		{"n=1", "?n=1", http.StatusOK, 1},
		{"zero", "?n=0", http.StatusBadRequest, 0},
		{"not a number", "?n=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/top-products"+tt.query, nil)
			w := httptest.NewRecorder()
			handlers.HandleTopProducts(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var products []models.ProductRevenue
			if err := json.Unmarshal(decode(t, w).Data, &products); err != nil {
				t.Fatalf("failed to decode products: %v", err)
			}
			if len(products) != tt.wantLen {
				t.Fatalf("got %d products, want %d", len(products), tt.wantLen)
			}
			if products[0].Product != "Portátil" || products[0].Revenue != 130 {
				t.Errorf("top product = %+v, want Portátil 130", products[0])
			}
		})
	}
}

func TestAPIHandlers_HandleDistribution(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	t.Run("channel", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/distribution", nil)
		w := httptest.NewRecorder()
		handlers.HandleDistribution(w, req)

		var rows []models.ChannelRevenue
		if err := json.Unmarshal(decode(t, w).Data, &rows); err != nil {
			t.Fatalf("failed to decode distribution: %v", err)
		}
		if len(rows) != 2 || rows[0].Channel != "Online" || rows[0].Revenue != 130 || rows[1].Revenue != 141 {
			t.Errorf("channel distribution = %+v", rows)
		}
	})

	t.Run("region", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/distribution?by=region", nil)
		w := httptest.NewRecorder()
		handlers.HandleDistribution(w, req)

		var rows []models.RegionRevenue
		if err := json.Unmarshal(decode(t, w).Data, &rows); err != nil {
			t.Fatalf("failed to decode distribution: %v", err)
		}
		if len(rows) != 3 || rows[0].Region != "Norte" || rows[0].Revenue != 130 {
			t.Errorf("region distribution = %+v", rows)
		}
	})

	t.Run("unknown dimension", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/distribution?by=country", nil)
		w := httptest.NewRecorder()
		handlers.HandleDistribution(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

func TestAPIHandlers_FilteredViewsArePrivate(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	tests := []struct {
		name    string
		url     string
		handler http.HandlerFunc
	}{
		{"options", "/api/options", handlers.HandleOptions},
		{"sales", "/api/sales?region=Norte", handlers.HandleSales},
		{"kpis", "/api/kpis?category=Mobili%C3%A1rio", handlers.HandleKPIs},
		{"monthly", "/api/monthly-sales?channel=Loja", handlers.HandleMonthlySales},
		{"top products", "/api/top-products?n=2&customer=a", handlers.HandleTopProducts},
		{"distribution", "/api/distribution?by=region&region=Sul", handlers.HandleDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			cc := w.Header().Get("Cache-Control")
			if !strings.HasPrefix(cc, "private") || strings.Contains(cc, "public") {
				t.Errorf("Cache-Control = %q, want a private policy", cc)
			}
		})
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), 10)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	analytics := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, testLogger(), 10)

	// one filtered query before reading stats
	w := httptest.NewRecorder()
	handlers.HandleSales(w, httptest.NewRequest(http.MethodGet, "/api/sales", nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w = httptest.NewRecorder()
	handlers.HandleStats(w, req)

	var stats map[string]any
	if err := json.Unmarshal(decode(t, w).Data, &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats["loaded"] != true {
		t.Errorf("loaded = %v, want true", stats["loaded"])
	}
	if stats["record_count"] != float64(4) {
		t.Errorf("record_count = %v, want 4", stats["record_count"])
	}
	if stats["queries"] != float64(1) {
		t.Errorf("queries = %v, want 1", stats["queries"])
	}
}
