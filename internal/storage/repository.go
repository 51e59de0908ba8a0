package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/spimexpulse/internal/domain/models"
)

const tableName = "spimex_trading_results"

const selectColumns = `id, exchange_product_id, exchange_product_name, oil_id, delivery_basis_id,
		delivery_basis_name, delivery_type_id, volume, total, count, date, created_at, updated_at`

// TradingResultsRepository defines contract for DB operations.
type TradingResultsRepository interface {
	Exists(ctx context.Context, date time.Time, exchangeProductID string) (bool, error)
	SaveTradingResults(ctx context.Context, records []models.TradingResult) (SaveStats, error)
	ListTradingResults(ctx context.Context, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error)
	ListDynamics(ctx context.Context, rng models.DateRange, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error)
	LastTradingDates(ctx context.Context, count int) ([]time.Time, error)
}

// RowFailure describes a record that could not be inserted.
type RowFailure struct {
	ExchangeProductID string
	Err               error
}

// SaveStats reports the outcome of SaveTradingResults.
type SaveStats struct {
	Inserted int
	Skipped  int
	Failed   int
	Failures []RowFailure
}

type tradingResultsRepository struct {
	db *sql.DB
}

func NewTradingResultsRepository(db *sql.DB) TradingResultsRepository {
	return &tradingResultsRepository{db: db}
}

// Exists reports whether a record for the (date, product) pair is already stored.
func (r *tradingResultsRepository) Exists(ctx context.Context, date time.Time, exchangeProductID string) (bool, error) {
	return exists(ctx, r.db, date, exchangeProductID)
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func exists(ctx context.Context, q rowQuerier, date time.Time, exchangeProductID string) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, existsQuery, date, exchangeProductID).Scan(&found); err != nil {
		return false, fmt.Errorf("check %s: %w", exchangeProductID, err)
	}
	return found, nil
}

const existsQuery = `SELECT EXISTS(SELECT 1 FROM spimex_trading_results WHERE date = $1 AND exchange_product_id = $2)`

const insertQuery = `INSERT INTO spimex_trading_results (
		exchange_product_id, exchange_product_name, oil_id, delivery_basis_id,
		delivery_basis_name, delivery_type_id, volume, total, count, date
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (date, exchange_product_id) DO NOTHING`

// SaveTradingResults persists one file worth of records in a single transaction.
//
// Each row runs inside its own savepoint: a failing row is rolled back alone and
// counted in Failed, the rest of the file still commits. Rows whose (date, product)
// pair already exists are counted in Skipped, including pairs inserted concurrently
// by another writer between the existence check and the insert.
func (r *tradingResultsRepository) SaveTradingResults(ctx context.Context, records []models.TradingResult) (SaveStats, error) {
	var stats SaveStats
	if len(records) == 0 {
		return stats, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin tx: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT row_insert"); err != nil {
			_ = tx.Rollback()
			return SaveStats{}, fmt.Errorf("savepoint: %w", err)
		}

		inserted, err := saveRow(ctx, tx, rec)
		if err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT row_insert"); rbErr != nil {
				_ = tx.Rollback()
				return SaveStats{}, fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			stats.Failed++
			stats.Failures = append(stats.Failures, RowFailure{ExchangeProductID: rec.ExchangeProductID, Err: err})
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT row_insert"); err != nil {
			_ = tx.Rollback()
			return SaveStats{}, fmt.Errorf("release savepoint: %w", err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return SaveStats{}, fmt.Errorf("commit: %w", err)
	}
	return stats, nil
}

func saveRow(ctx context.Context, tx *sql.Tx, rec models.TradingResult) (bool, error) {
	found, err := exists(ctx, tx, rec.Date, rec.ExchangeProductID)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}

	res, err := tx.ExecContext(ctx, insertQuery,
		rec.ExchangeProductID,
		rec.ExchangeProductName,
		rec.OilID,
		rec.DeliveryBasisID,
		rec.DeliveryBasisName,
		rec.DeliveryTypeID,
		rec.Volume,
		rec.Total,
		rec.Count,
		rec.Date,
	)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", rec.ExchangeProductID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListTradingResults returns a page of records matching filter, newest first.
func (r *tradingResultsRepository) ListTradingResults(ctx context.Context, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error) {
	where, args := buildConditions(filter, nil)
	return r.list(ctx, where, args, page)
}

// ListDynamics is ListTradingResults bounded by an inclusive date range.
func (r *tradingResultsRepository) ListDynamics(ctx context.Context, rng models.DateRange, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error) {
	where, args := buildConditions(filter, &rng)
	return r.list(ctx, where, args, page)
}

// LastTradingDates returns up to count distinct trading dates, newest first.
func (r *tradingResultsRepository) LastTradingDates(ctx context.Context, count int) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM spimex_trading_results ORDER BY date DESC LIMIT $1`, count)
	if err != nil {
		return nil, fmt.Errorf("query trading dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dates := make([]time.Time, 0, count)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan trading date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading dates: %w", err)
	}
	return dates, nil
}

func (r *tradingResultsRepository) list(ctx context.Context, where string, args []interface{}, page models.Page) ([]models.TradingResult, error) {
	page = page.Normalize()

	query := "SELECT " + selectColumns + " FROM " + tableName
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trading results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.TradingResult, 0, page.Limit)
	for rows.Next() {
		var rec models.TradingResult
		if err := rows.Scan(
			&rec.ID,
			&rec.ExchangeProductID,
			&rec.ExchangeProductName,
			&rec.OilID,
			&rec.DeliveryBasisID,
			&rec.DeliveryBasisName,
			&rec.DeliveryTypeID,
			&rec.Volume,
			&rec.Total,
			&rec.Count,
			&rec.Date,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trading result: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading results: %w", err)
	}
	return out, nil
}

// buildConditions renders the filter (and optional date range) as a conjunction
// with positional placeholders starting at $1.
func buildConditions(filter models.TradingFilter, rng *models.DateRange) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if rng != nil {
		args = append(args, rng.Start)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
		args = append(args, rng.End)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filter.OilID != nil {
		add("oil_id", *filter.OilID)
	}
	if filter.DeliveryTypeID != nil {
		add("delivery_type_id", *filter.DeliveryTypeID)
	}
	if filter.DeliveryBasisID != nil {
		add("delivery_basis_id", *filter.DeliveryBasisID)
	}
	return strings.Join(conds, " AND "), args
}
