package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.DataCoreRepository using SQLite. Each timeframe owns
// one row holding the whole snapshot as JSON.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/datacore.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("%w: failed to create data directory '%s': %v", ports.ErrDBConnection, filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite snapshot cache ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS data_roots (
		timeframe TEXT PRIMARY KEY,
		close_time INTEGER NOT NULL,
		payload TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to execute schema initialization: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Get returns the cached snapshot of timeframe, or nil when none is stored.
func (r *Repository) Get(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	const query = `SELECT payload FROM data_roots WHERE timeframe = ?`

	var payload string
	err := r.db.QueryRowContext(ctx, query, timeframe.String()).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read snapshot for %s: %v", ports.ErrQueryFailed, timeframe, err)
	}

	var root domain.DataCoreRoot
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, fmt.Errorf("%w: timeframe %s: %v", ports.ErrCorruptCache, timeframe, err)
	}
	return &root, nil
}

// Save replaces the stored snapshot of root.Timeframe.
func (r *Repository) Save(ctx context.Context, root *domain.DataCoreRoot) error {
	if root == nil || root.Timeframe == "" {
		return fmt.Errorf("%w: snapshot without timeframe", ports.ErrInvalidRequest)
	}
	payload, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", root.Timeframe, err)
	}

	const query = `
	INSERT INTO data_roots (timeframe, close_time, payload, saved_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(timeframe) DO UPDATE SET
		close_time = excluded.close_time,
		payload = excluded.payload,
		saved_at = excluded.saved_at`

	if _, err := r.db.ExecContext(ctx, query, root.Timeframe, root.CloseTime, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to save snapshot for %s: %v", ports.ErrUpdateFailed, root.Timeframe, err)
	}

	r.logger.Debug(ctx, "Snapshot saved", map[string]interface{}{
		"timeframe": root.Timeframe,
		"closeTime": root.CloseTime,
		"bytes":     len(payload),
	})
	return nil
}

// Clear removes every stored snapshot.
func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM data_roots`); err != nil {
		return fmt.Errorf("%w: failed to clear snapshots: %v", ports.ErrDeleteFailed, err)
	}
	return nil
}

var _ ports.DataCoreRepository = (*Repository)(nil)
