package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sales-dashboard/internal/export"
)

func TestExportHandlers_HandleCSV(t *testing.T) {
	handlers := NewExportHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/export/csv?region=Norte", nil)
	w := httptest.NewRecorder()
	handlers.HandleCSV(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, export.CSVFilename) {
		t.Errorf("Content-Disposition = %q, want filename %s", cd, export.CSVFilename)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "id" || records[0][len(records[0])-1] != "month" {
		t.Errorf("unexpected header %v", records[0])
	}
}

func TestExportHandlers_HandleXLSX(t *testing.T) {
	handlers := NewExportHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/export/xlsx", nil)
	w := httptest.NewRecorder()
	handlers.HandleXLSX(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != export.XLSXContentType {
		t.Errorf("Content-Type = %q, want %q", ct, export.XLSXContentType)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip archive")
	}
}

func TestExportHandlers_BadFilters(t *testing.T) {
	handlers := NewExportHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/export/csv?end=2023-01-01", nil)
	w := httptest.NewRecorder()
	handlers.HandleCSV(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestFormatEuro(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "€ 0,00"},
		{60, "€ 60,00"},
		{1234.5, "€ 1 234,50"},
		{1234567.891, "€ 1 234 567,89"},
		{-42.1, "€ -42,10"},
	}
	for _, tt := range tests {
		if got := formatEuro(tt.in); got != tt.want {
			t.Errorf("formatEuro(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMultiValue(t *testing.T) {
	q := map[string][]string{"category": {"A, B", "C", " "}}
	got := multiValue(q, "category")
	if strings.Join(got, "|") != "A|B|C" {
		t.Errorf("multiValue() = %v, want [A B C]", got)
	}
}
