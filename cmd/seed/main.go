package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/seed"
)

func main() {
	dbPath := flag.String("db", "db/app.db", "SQLite database to create")
	csvPath := flag.String("csv", "", "also write the generated rows to this CSV file")
	rows := flag.Int("rows", 500, "number of sales to generate")
	year := flag.Int("year", 2023, "first year covered by the generated sales")
	randSeed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	logger := observability.NewLogger(config.LoggerConfig{Level: "info", Format: "text"})

	if err := run(*dbPath, *csvPath, *rows, *year, *randSeed, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(dbPath, csvPath string, rows, year int, randSeed int64, logger *slog.Logger) error {
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seed.Reset(ctx, db); err != nil {
		return err
	}

	sales := seed.Generate(rows, rand.New(rand.NewSource(randSeed)), time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := seed.Insert(ctx, db, seed.Rows(sales)); err != nil {
		return err
	}
	logger.Info("database created", "path", dbPath, "rows", len(sales))

	if csvPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteCSV(f, sales); err != nil {
		return err
	}
	logger.Info("csv written", "path", csvPath, "rows", len(sales))
	return nil
}
