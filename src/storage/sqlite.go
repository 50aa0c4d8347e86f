package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"param-server/src/logger"
	"param-server/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS daily_closes (
			symbol TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			close REAL NOT NULL,
			PRIMARY KEY (symbol, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create daily_closes: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveSeries(ctx context.Context, series models.MPriceSeries) error {
	if len(series.Points) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_closes (symbol, timestamp, close)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET close = excluded.close
	`)
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

func (d *AsyncSQLiteDB) LoadSeries(ctx context.Context, symbol string, since time.Time) (models.MPriceSeries, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT timestamp, close FROM daily_closes
		WHERE symbol = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`, symbol, since.Unix())
	if err != nil {
		return models.MPriceSeries{}, err
	}
	defer rows.Close()

	return scanSeries(symbol, rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Symbols(ctx context.Context) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, "SELECT DISTINCT symbol FROM daily_closes ORDER BY symbol")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSymbols(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
