package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"sales-dashboard/internal/config"
	apperrors "sales-dashboard/internal/errors"
)

const salesQuery = `
	SELECT id, date, customer, product, category,
	       quantity, unit_price, total, region, channel
	FROM sales`

const columnsQuery = `SELECT * FROM sales LIMIT 0`

// Postgres SQLSTATE codes.
const (
	pqUndefinedTable  = "42P01"
	pqUndefinedColumn = "42703"
)

// Driver opens the database behind a DB_URI. Errors are AppErrors.
type Driver interface {
	Name() string
	Open(ctx context.Context, uri string) (*sql.DB, error)
}

func NewDriver(name string) (Driver, error) {
	switch name {
	case config.DriverURI, "":
		return URIDriver{}, nil
	case config.DriverFile:
		return FileDriver{}, nil
	default:
		return nil, apperrors.InvalidConfiguration(fmt.Errorf("unknown DB_DRIVER %q", name))
	}
}

// URIDriver dispatches on the URI scheme: sqlite files through
// modernc.org/sqlite, postgres servers through lib/pq.
type URIDriver struct{}

func (URIDriver) Name() string { return config.DriverURI }

func (URIDriver) Open(ctx context.Context, uri string) (*sql.DB, error) {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		locator := redact(uri)
		db, err := sql.Open("postgres", uri)
		if err != nil {
			return nil, apperrors.InvalidConfiguration(fmt.Errorf("open %s: %w", locator, err))
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, apperrors.DataSourceNotFound(locator, err)
		}
		return db, nil
	case strings.HasPrefix(uri, "sqlite:"), !strings.Contains(uri, "://"):
		return openSQLiteFile(sqlitePath(uri))
	default:
		return nil, apperrors.InvalidConfiguration(fmt.Errorf("unsupported DB_URI scheme in %q", redact(uri)))
	}
}

// FileDriver only understands local SQLite files.
type FileDriver struct{}

func (FileDriver) Name() string { return config.DriverFile }

func (FileDriver) Open(_ context.Context, uri string) (*sql.DB, error) {
	return openSQLiteFile(sqlitePath(uri))
}

func openSQLiteFile(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.DataSourceNotFound(path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.DataSourceNotFound(path, err)
	}
	return db, nil
}

// sqlitePath converts "sqlite:///db/app.db" to "db/app.db". Bare paths pass
// through unchanged.
func sqlitePath(uri string) string {
	for _, prefix := range []string{"sqlite:///", "sqlite://", "sqlite:"} {
		if strings.HasPrefix(uri, prefix) {
			return strings.TrimPrefix(uri, prefix)
		}
	}
	return uri
}

func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return u.Redacted()
}

// SQLSource reads the sales table through a Driver.
type SQLSource struct {
	driver Driver
	uri    string
}

func NewSQLSource(driver Driver, uri string) *SQLSource {
	return &SQLSource{driver: driver, uri: uri}
}

func (s *SQLSource) Locator() string {
	if strings.Contains(s.uri, "://") && !strings.HasPrefix(s.uri, "sqlite:") {
		return redact(s.uri)
	}
	return sqlitePath(s.uri)
}

func (s *SQLSource) Fetch(ctx context.Context) (*RawTable, error) {
	db, err := s.driver.Open(ctx, s.uri)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, salesQuery)
	if err != nil {
		switch {
		case isUndefinedTable(err):
			return nil, apperrors.DataSourceNotFound(s.Locator()+"#sales", err)
		case isUndefinedColumn(err):
			return nil, s.schemaMismatch(ctx, db, err)
		default:
			return nil, apperrors.InternalWrap(err, "query sales")
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.InternalWrap(err, "read sales columns")
	}

	raw := &RawTable{Columns: columns}
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.InternalWrap(err, "scan sales row")
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = stringify(v)
		}
		raw.Rows = append(raw.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.InternalWrap(err, "iterate sales rows")
	}

	return raw, nil
}

// schemaMismatch reads the real column set so the error names exactly the
// required columns the table lacks.
func (s *SQLSource) schemaMismatch(ctx context.Context, db *sql.DB, cause error) error {
	rows, err := db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return apperrors.InternalWrap(cause, "query sales")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return apperrors.InternalWrap(err, "read sales columns")
	}
	if missing := missingColumns(indexColumns(columns)); len(missing) > 0 {
		return apperrors.SchemaMismatch(missing)
	}
	return apperrors.InternalWrap(cause, "query sales")
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUndefinedTable
	}
	return strings.Contains(err.Error(), "no such table")
}

func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUndefinedColumn
	}
	return strings.Contains(err.Error(), "no such column")
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
