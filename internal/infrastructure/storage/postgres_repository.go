package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"countysales/internal/domain"
	"countysales/internal/ports"
)

const insertBatchSize = 500

const schema = `CREATE TABLE IF NOT EXISTS report_sales (
    window_start     DATE NOT NULL,
    window_end       DATE NOT NULL,
    county           TEXT NOT NULL,
    parcel_id        TEXT NOT NULL,
    address          TEXT NOT NULL,
    fin_sqft         INTEGER,
    year_built       INTEGER,
    sale_date        DATE NOT NULL,
    sale_price       NUMERIC(14, 2) NOT NULL,
    price_per_sqft   DOUBLE PRECISION,
    est_monthly_rent DOUBLE PRECISION NOT NULL,
    est_roi          DOUBLE PRECISION,
    cash_sale        BOOLEAN NOT NULL,
    deal             BOOLEAN NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (window_start, window_end, county, parcel_id)
)`

var reportColumns = []string{
	"window_start", "window_end", "county", "parcel_id", "address", "fin_sqft", "year_built",
	"sale_date", "sale_price", "price_per_sqft", "est_monthly_rent", "est_roi", "cash_sale", "deal",
}

const upsertSuffix = `ON CONFLICT (window_start, window_end, county, parcel_id) DO UPDATE
SET sale_date = EXCLUDED.sale_date,
    sale_price = EXCLUDED.sale_price,
    price_per_sqft = EXCLUDED.price_per_sqft,
    est_monthly_rent = EXCLUDED.est_monthly_rent,
    est_roi = EXCLUDED.est_roi,
    cash_sale = EXCLUDED.cash_sale,
    deal = EXCLUDED.deal`

// PostgresRepository archives each run's enriched rows. Nothing reads them
// back during a run.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ReportArchive = (*PostgresRepository)(nil)

// Open connects with the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the archive table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create report_sales: %w", err)
	}
	return nil
}

// SaveReport upserts records in batches inside one transaction.
func (r *PostgresRepository) SaveReport(ctx context.Context, window domain.DateRange, records []domain.EnrichedRecord) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		query, args, err := insertQuery(window, records[start:end])
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert report rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertQuery(window domain.DateRange, records []domain.EnrichedRecord) (string, []any, error) {
	q := sq.Insert("report_sales").
		Columns(reportColumns...).
		PlaceholderFormat(sq.Dollar).
		Suffix(upsertSuffix)

	for _, rec := range records {
		q = q.Values(
			window.Start, window.End, rec.Source, rec.ParcelID, rec.Address,
			rec.FinishedSqft, rec.YearBuilt, rec.SaleDate, rec.SalePrice,
			rec.PricePerSqft, rec.EstMonthlyRent, rec.EstROI, rec.CashSale, rec.Deal,
		)
	}
	return q.ToSql()
}
