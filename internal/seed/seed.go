// Package seed generates sample sales and writes them to a SQLite sales table.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

const Schema = `
	CREATE TABLE IF NOT EXISTS sales (
		id         INTEGER PRIMARY KEY,
		date       TEXT NOT NULL,
		customer   TEXT,
		product    TEXT,
		category   TEXT,
		quantity   INTEGER,
		unit_price REAL,
		total      REAL,
		region     TEXT,
		channel    TEXT
	)`

// Row is one sales row in models.Columns order. Cells may be nil or hold
// values of any type the driver accepts, so callers can seed broken data.
type Row []any

type product struct {
	name     string
	category string
	price    float64
}

var catalog = []product{
	{"Teclado Mecânico", "Periféricos", 89.90},
	{"Rato Sem Fios", "Periféricos", 24.99},
	{"Monitor 27\"", "Monitores", 279.00},
	{"Monitor 24\"", "Monitores", 159.50},
	{"Portátil 14\"", "Computadores", 899.00},
	{"Desktop Gamer", "Computadores", 1499.00},
	{"Headset USB", "Áudio", 59.90},
	{"Colunas Bluetooth", "Áudio", 45.00},
	{"SSD 1TB", "Componentes", 79.99},
	{"Memória 16GB", "Componentes", 49.90},
	{"Webcam HD", "Periféricos", 39.90},
	{"Router Wi-Fi 6", "Redes", 119.00},
}

var (
	regions   = []string{"Norte", "Centro", "Lisboa", "Alentejo", "Algarve"}
	channels  = []string{"Online", "Loja", "Marketplace"}
	customers = []string{
		"Ana Silva", "Bruno Costa", "Carla Sousa", "Diogo Martins", "Eva Pereira",
		"Filipe Santos", "Gabriela Rocha", "Hugo Ferreira", "Inês Almeida", "João Ribeiro",
	}
)

// Generate builds n sales spread over the year starting at from.
func Generate(n int, r *rand.Rand, from time.Time) []models.Sale {
	sales := make([]models.Sale, 0, n)
	for i := 0; i < n; i++ {
		p := catalog[r.Intn(len(catalog))]
		date := models.DateOf(from.AddDate(0, 0, r.Intn(365)))
		qty := 1 + r.Intn(5)
		sales = append(sales, models.Sale{
			ID:        strconv.Itoa(i + 1),
			Date:      date,
			Customer:  customers[r.Intn(len(customers))],
			Product:   p.name,
			Category:  p.category,
			Quantity:  qty,
			UnitPrice: p.price,
			Total:     math.Round(float64(qty)*p.price*100) / 100,
			Region:    regions[r.Intn(len(regions))],
			Channel:   channels[r.Intn(len(channels))],
			Month:     models.MonthStart(date),
		})
	}
	return sales
}

// Rows converts sales into insertable rows.
func Rows(sales []models.Sale) []Row {
	rows := make([]Row, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, Row{
			s.ID, s.Date.Format(models.DateLayout), s.Customer, s.Product, s.Category,
			s.Quantity, s.UnitPrice, s.Total, s.Region, s.Channel,
		})
	}
	return rows
}

func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create sales table: %w", err)
	}
	return nil
}

// Insert writes rows inside a single transaction.
func Insert(ctx context.Context, db *sql.DB, rows []Row) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ph := strings.TrimRight(strings.Repeat("?,", len(models.Columns)), ",")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sales (`+strings.Join(models.Columns, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(models.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(models.Columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Reset drops and recreates the sales table.
func Reset(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS sales`); err != nil {
		return fmt.Errorf("drop sales table: %w", err)
	}
	return CreateSchema(ctx, db)
}
