package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"param-server/src/logger"
	"param-server/src/models"

	"github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresDB keeps the archive in a schema named after the service.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, fmt.Errorf("postgres: empty connection string")
	}
	return &PostgresDB{
		Config: cfg,
		Schema: SchemaName(cfg.Name),
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

// SchemaName lower-cases name and replaces anything outside [a-z0-9_] with '_'.
func SchemaName(name string) string {
	if name == "" {
		name = "param_server"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table() string {
	return pq.QuoteIdentifier(d.Schema) + ".daily_closes"
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol TEXT NOT NULL,
			timestamp BIGINT NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, timestamp)
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create daily_closes: %w", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSeries(ctx context.Context, series models.MPriceSeries) error {
	if len(series.Points) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (symbol, timestamp, close)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET close = EXCLUDED.close
	`, d.table()))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range series.Points {
		if _, err := stmt.ExecContext(ctx, series.Symbol, p.Timestamp, p.Close); err != nil {
			return fmt.Errorf("upsert %s@%d: %w", series.Symbol, p.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	d.Logger.Info("Stored %d closes for %s", len(series.Points), series.Symbol)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LoadSeries(ctx context.Context, symbol string, since time.Time) (models.MPriceSeries, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT timestamp, close FROM %s
		WHERE symbol = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`, d.table()), symbol, since.Unix())
	if err != nil {
		return models.MPriceSeries{}, err
	}
	defer rows.Close()

	return scanSeries(symbol, rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Symbols(ctx context.Context) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT symbol FROM %s ORDER BY symbol", d.table()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSymbols(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
