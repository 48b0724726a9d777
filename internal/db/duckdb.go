package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/oscillatelabsllc/sidequest/internal/models"
)

// DuckDB stores the ledger as one row per directional pair count.
// Rows carry no primary key: Save deletes and re-inserts the same keys in one
// transaction, which DuckDB's index constraint checking rejects.
type DuckDB struct {
	db *sql.DB
}

// NewDuckDB opens (creating if needed) a DuckDB database at dbPath
func NewDuckDB(dbPath string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &DuckDB{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return d, nil
}

// initialize sets up the database schema
func (d *DuckDB) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS adventures (
			date VARCHAR NOT NULL,
			person_a VARCHAR NOT NULL,
			person_b VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			count INTEGER NOT NULL
		);

		-- Tracks whether the ledger has ever been saved, so an empty ledger
		-- that was saved is distinguishable from a brand new database
		CREATE TABLE IF NOT EXISTS ledger_meta (
			id INTEGER PRIMARY KEY,
			saved_at TIMESTAMPTZ NOT NULL
		);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (d *DuckDB) Name() string { return "duckdb" }

// Load reads every row back into a ledger
func (d *DuckDB) Load(ctx context.Context) (models.Ledger, bool, error) {
	var saves int
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM ledger_meta").Scan(&saves); err != nil {
		return nil, false, fmt.Errorf("failed to read ledger metadata: %w", err)
	}
	if saves == 0 {
		return models.Ledger{}, false, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT date, person_a, person_b, category, count
		FROM adventures
		ORDER BY date, person_a, person_b, category
	`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query adventures: %w", err)
	}
	defer rows.Close()

	ledger := models.Ledger{}
	for rows.Next() {
		var (
			date, a, b, label string
			count             int
		)
		if err := rows.Scan(&date, &a, &b, &label, &count); err != nil {
			return nil, false, fmt.Errorf("failed to scan adventure: %w", err)
		}
		category, err := models.ParseCategory(label)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt adventure row on %s: %w", date, err)
		}
		ledger.Add(date, models.PairKey{A: a, B: b, Category: category}, count)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	return ledger, true, nil
}

// Save replaces the table contents inside a single transaction
func (d *DuckDB) Save(ctx context.Context, ledger models.Ledger) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM adventures"); err != nil {
		return fmt.Errorf("failed to clear adventures: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO adventures (date, person_a, person_b, category, count)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range ledger.Flatten() {
		if _, err := stmt.ExecContext(ctx, e.Date, e.A, e.B, e.Category.String(), e.Count); err != nil {
			return fmt.Errorf("failed to insert adventure: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO ledger_meta (id, saved_at) VALUES (1, CURRENT_TIMESTAMP)
	`); err != nil {
		return fmt.Errorf("failed to update ledger metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DuckDB) Close() error {
	return d.db.Close()
}
