package handlers

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

// Filtered views must not be stored by shared caches.
const cacheControl = "private, max-age=300"

type APIHandlers struct {
	analytics   *services.Analytics
	logger      *slog.Logger
	defaultTopN int
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger, defaultTopN int) *APIHandlers {
	return &APIHandlers{
		analytics:   analytics,
		logger:      logger,
		defaultTopN: defaultTopN,
	}
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.analytics.Options(r.Context())
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, opts, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleSales(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.filtered(w, r)
	if !ok {
		return
	}

	data := map[string]any{
		"count": len(sales),
		"sales": sales,
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.filtered(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, services.CalcKPIs(sales), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.filtered(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, services.MonthlySales(sales), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	n, err := parsePositiveInt(r.URL.Query().Get("n"), h.defaultTopN)
	if err != nil {
		writeFailure(w, r, h.logger, errors.BadRequestWrap(err, "invalid n"))
		return
	}

	sales, ok := h.filtered(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, services.TopProducts(sales, n), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	dim, err := models.ParseDimension(r.URL.Query().Get("by"))
	if err != nil {
		writeFailure(w, r, h.logger, errors.BadRequestWrap(err, "invalid distribution dimension"))
		return
	}

	sales, ok := h.filtered(w, r)
	if !ok {
		return
	}

	var data any
	if dim == models.DimensionRegion {
		data = services.RegionDistribution(sales)
	} else {
		data = services.ChannelDistribution(sales)
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

// filtered parses the filter parameters and returns the filtered view. On
// failure the error response has already been written.
func (h *APIHandlers) filtered(w http.ResponseWriter, r *http.Request) ([]models.Sale, bool) {
	return filteredSales(w, r, h.analytics, h.logger)
}

func filteredSales(w http.ResponseWriter, r *http.Request, analytics *services.Analytics, logger *slog.Logger) ([]models.Sale, bool) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		writeFailure(w, r, logger, errors.BadRequestWrap(err, "invalid filter parameters"))
		return nil, false
	}

	sales, err := analytics.Filter(r.Context(), f)
	if err != nil {
		writeFailure(w, r, logger, err)
		return nil, false
	}
	return sales, true
}

// writeFailure writes err as an error envelope. AppErrors are copied first
// because a failed session load returns the same error to every request.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		cp := *appErr
		err = &cp
	}
	errors.WriteError(w, logger, err, observability.GetRequestID(r.Context()))
}
