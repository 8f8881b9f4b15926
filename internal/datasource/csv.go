package datasource

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "sales-dashboard/internal/errors"
)

const utf8BOM = "\ufeff"

// CSVSource reads a delimited file with a header row.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Locator() string {
	return s.path
}

func (s *CSVSource) Fetch(ctx context.Context) (*RawTable, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.DataSourceNotFound(s.path, err)
		}
		return nil, apperrors.InternalWrap(err, "open csv file")
	}
	defer file.Close()

	return readCSV(ctx, bufio.NewReaderSize(file, 1024*1024))
}

func readCSV(ctx context.Context, r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &RawTable{}, nil
	}
	if err != nil {
		return nil, apperrors.InternalWrap(err, "read csv header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	raw := &RawTable{Columns: header}
	for line := 2; ; line++ {
		if line%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.InternalWrap(err, fmt.Sprintf("read csv line %d", line))
		}
		raw.Rows = append(raw.Rows, record)
	}

	return raw, nil
}
