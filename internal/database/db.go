package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"

	"github.com/Alias1177/Scorecard/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection, retrying the initial ping
// with exponential backoff so a cold database container does not fail
// a batch run.
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(db.Ping, backoffStrategy); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scorecards (
			run_name   TEXT NOT NULL,
			group_key  TEXT NOT NULL,
			metric     TEXT NOT NULL,
			value      DOUBLE PRECISION,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_name, group_key, metric)
		)
	`)
	return err
}

// SaveScorecard stores one scorecard under a run name and group key.
// Use an empty group key for whole-set scorecards. NaN metric values
// are stored as NULL.
func (db *DB) SaveScorecard(ctx context.Context, runName, groupKey string, sc *models.Scorecard) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scorecard save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scorecards (run_name, group_key, metric, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_name, group_key, metric)
		DO UPDATE SET value = EXCLUDED.value, created_at = EXCLUDED.created_at
	`)
	if err != nil {
		return fmt.Errorf("prepare scorecard save: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, name := range sc.Names() {
		value, _ := sc.Get(name)
		var stored sql.NullFloat64
		if !math.IsNaN(value) {
			stored = sql.NullFloat64{Float64: value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runName, groupKey, name, stored, now); err != nil {
			return fmt.Errorf("save metric %q for run %q: %w", name, runName, err)
		}
	}

	return tx.Commit()
}

// SaveGrouped stores every group's scorecard under the same run name.
func (db *DB) SaveGrouped(ctx context.Context, runName string, grouped models.GroupedScorecard[string]) error {
	for key, sc := range grouped {
		if err := db.SaveScorecard(ctx, runName, key, sc); err != nil {
			return err
		}
	}
	return nil
}

// SaveComparison stores every run's whole-set scorecard.
func (db *DB) SaveComparison(ctx context.Context, table models.ComparisonTable) error {
	for runName, sc := range table {
		if err := db.SaveScorecard(ctx, runName, "", sc); err != nil {
			return err
		}
	}
	return nil
}
