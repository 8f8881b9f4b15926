// Package export serializes a filtered view for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const (
	CSVFilename    = "vendas_filtradas.csv"
	CSVContentType = "text/csv"

	XLSXFilename    = "vendas_filtradas.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Vendas"
	flushRows = 1000
)

// WriteCSV writes a header of the canonical column names followed by one
// line per sale.
func WriteCSV(w io.Writer, sales []models.Sale) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.ExportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range sales {
		if err := writer.Write(s.Record()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
		if (i+1)%flushRows == 0 {
			writer.Flush()
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSV returns the UTF-8 encoded CSV of sales.
func CSV(sales []models.Sale) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 64*1024))
	if err := WriteCSV(buf, sales); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX returns a workbook with one sheet holding the same columns as CSV.
// Numeric columns are written as numbers and dates as text.
func XLSX(sales []models.Sale) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(models.ExportColumns))
	for i, c := range models.ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, s := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			s.ID,
			s.Date.Format(models.DateLayout),
			s.Customer,
			s.Product,
			s.Category,
			s.Quantity,
			s.UnitPrice,
			s.Total,
			s.Region,
			s.Channel,
			s.Month.Format(models.DateLayout),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
