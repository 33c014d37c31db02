// backend-go/cmd/seed/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newSeedFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:  "seed",
		Usage: "Random seed, fixed for reproducible datasets",
		Value: 42,
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with sales history and supporting data",
		Commands: []*cli.Command{
			{
				Name:  "sales",
				Usage: "Load sales history from a CSV file (store_id,sku,date,units)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the sales CSV file",
						Required: true,
					},
				},
				Action: seedSales,
			},
			{
				Name:  "inventory",
				Usage: "Generate inventory snapshots for every pair present in sales",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newSeedFlag(),
				},
				Action: seedInventory,
			},
			{
				Name:  "demo",
				Usage: "Generate a full synthetic dataset: sales, inventory, forecasts and model errors",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newSeedFlag(),
					&cli.IntFlag{Name: "stores", Usage: "Number of stores", Value: 5},
					&cli.IntFlag{Name: "skus", Usage: "Number of SKUs per store", Value: 20},
					&cli.IntFlag{Name: "days", Usage: "Days of sales history", Value: 120},
				},
				Action: seedDemo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedSales(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", c.String("file"), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"store_id", "sku", "date", "units"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("missing required column %q", required)
		}
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (store_id, sku, date, units)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, sku, date) DO UPDATE SET units = EXCLUDED.units`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		units, err := strconv.ParseFloat(record[col["units"]], 64)
		if err != nil {
			return fmt.Errorf("row %d: invalid units %q: %w", rows+2, record[col["units"]], err)
		}
		date, err := time.Parse("2006-01-02", record[col["date"]])
		if err != nil {
			return fmt.Errorf("row %d: invalid date %q: %w", rows+2, record[col["date"]], err)
		}

		if _, err := stmt.ExecContext(ctx, record[col["store_id"]], record[col["sku"]], date, units); err != nil {
			return fmt.Errorf("row %d: insert failed: %w", rows+2, err)
		}
		rows++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Loaded %d sales rows", rows)
	return nil
}

// seedInventory assigns every pair found in sales a random stock level
// between 10 and 199 and a lead time between 3 and 14 days.
func seedInventory(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	pairs, err := listPairs(ctx, db)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no pairs found in sales, seed sales first")
	}

	rng := rand.New(rand.NewSource(c.Int64("seed")))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertInventory(ctx, tx, pairs, rng); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Generated inventory for %d pairs", len(pairs))
	return nil
}

func seedDemo(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(c.Int64("seed")))
	stores := c.Int("stores")
	skus := c.Int("skus")
	days := c.Int("days")
	if stores < 1 || skus < 1 || days < 1 {
		return fmt.Errorf("stores, skus and days must all be positive")
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	start := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	models := []string{"prophet", "xgboost"}

	salesStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (store_id, sku, date, units)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, sku, date) DO UPDATE SET units = EXCLUDED.units`)
	if err != nil {
		return fmt.Errorf("failed to prepare sales insert: %w", err)
	}
	defer salesStmt.Close()

	forecastStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecasts (store_id, sku, model, forecast_date, predicted_demand, lower_bound, upper_bound)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (store_id, sku, model, forecast_date) DO UPDATE
		SET predicted_demand = EXCLUDED.predicted_demand,
		    lower_bound = EXCLUDED.lower_bound,
		    upper_bound = EXCLUDED.upper_bound`)
	if err != nil {
		return fmt.Errorf("failed to prepare forecasts insert: %w", err)
	}
	defer forecastStmt.Close()

	errorStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO model_errors (store_id, sku, model, mae)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, sku, model) DO UPDATE SET mae = EXCLUDED.mae`)
	if err != nil {
		return fmt.Errorf("failed to prepare model_errors insert: %w", err)
	}
	defer errorStmt.Close()

	pairs := make([][2]string, 0, stores*skus)
	salesRows := 0
	for s := 1; s <= stores; s++ {
		storeID := fmt.Sprintf("S%03d", s)
		for k := 1; k <= skus; k++ {
			sku := fmt.Sprintf("SKU-%04d", k)
			pairs = append(pairs, [2]string{storeID, sku})

			// Base demand with weekend uplift and gaussian noise.
			base := 8 + rng.Float64()*32
			for d := 0; d < days; d++ {
				date := start.AddDate(0, 0, d)
				level := base
				switch date.Weekday() {
				case time.Saturday, time.Sunday:
					level *= 1.4
				case time.Monday:
					level *= 0.8
				}
				units := math.Max(0, math.Round(level+rng.NormFloat64()*base*0.25))
				if _, err := salesStmt.ExecContext(ctx, storeID, sku, date, units); err != nil {
					return fmt.Errorf("sales insert failed for %s/%s: %w", storeID, sku, err)
				}
				salesRows++
			}

			today := time.Now().UTC().Truncate(24 * time.Hour)
			for _, model := range models {
				bias := 1 + (rng.Float64()-0.5)*0.2
				for d := 0; d < 14; d++ {
					date := today.AddDate(0, 0, d)
					pred := math.Max(0, base*bias+rng.NormFloat64()*base*0.1)
					lower := math.Max(0, pred*0.85)
					upper := pred * 1.15
					if _, err := forecastStmt.ExecContext(ctx, storeID, sku, model, date, pred, lower, upper); err != nil {
						return fmt.Errorf("forecast insert failed for %s/%s: %w", storeID, sku, err)
					}
				}
				mae := 1 + rng.Float64()*7
				if _, err := errorStmt.ExecContext(ctx, storeID, sku, model, mae); err != nil {
					return fmt.Errorf("model_errors insert failed for %s/%s: %w", storeID, sku, err)
				}
			}
		}
	}

	if err := insertInventory(ctx, tx, pairs, rng); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Generated %d sales rows, forecasts and inventory for %d pairs", salesRows, len(pairs))
	return nil
}

func listPairs(ctx context.Context, db *sql.DB) ([][2]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT store_id, sku
		FROM sales
		ORDER BY store_id, sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var storeID, sku string
		if err := rows.Scan(&storeID, &sku); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, [2]string{storeID, sku})
	}
	return pairs, rows.Err()
}

func insertInventory(ctx context.Context, tx *sql.Tx, pairs [][2]string, rng *rand.Rand) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory (store_id, sku, current_stock, lead_time_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, sku) DO UPDATE
		SET current_stock = EXCLUDED.current_stock,
		    lead_time_days = EXCLUDED.lead_time_days`)
	if err != nil {
		return fmt.Errorf("failed to prepare inventory insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		stock := 10 + rng.Intn(190)
		leadTime := 3 + rng.Intn(12)
		if _, err := stmt.ExecContext(ctx, p[0], p[1], stock, leadTime); err != nil {
			return fmt.Errorf("inventory insert failed for %s/%s: %w", p[0], p[1], err)
		}
	}
	return nil
}
