package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/services"
)

type ExportHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewExportHandlers(analytics *services.Analytics, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *ExportHandlers) HandleCSV(w http.ResponseWriter, r *http.Request) {
	sales, ok := filteredSales(w, r, h.analytics, h.logger)
	if !ok {
		return
	}

	data, err := export.CSV(sales)
	if err != nil {
		writeFailure(w, r, h.logger, errors.InternalWrap(err, "export csv"))
		return
	}

	writeAttachment(w, data, export.CSVContentType+"; charset=utf-8", export.CSVFilename)
	h.logger.Info("csv export", "rows", len(sales), "bytes", len(data))
}

func (h *ExportHandlers) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	sales, ok := filteredSales(w, r, h.analytics, h.logger)
	if !ok {
		return
	}

	data, err := export.XLSX(sales)
	if err != nil {
		writeFailure(w, r, h.logger, errors.InternalWrap(err, "export xlsx"))
		return
	}

	writeAttachment(w, data, export.XLSXContentType, export.XLSXFilename)
	h.logger.Info("xlsx export", "rows", len(sales), "bytes", len(data))
}

func writeAttachment(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
