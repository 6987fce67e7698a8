package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested analysis does not exist.
var ErrNotFound = errors.New("stores: analysis not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store backed by the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("stores: database path is required")
	}
	return &SQLiteStore{path: path}, nil
}

// Init opens the database, enables WAL mode and runs migrations.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("stores: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("stores: failed to ping database: %w", err)
	}

	s.db = db
	return s.migrate()
}

// migrate applies the embedded schema migrations.
func (s *SQLiteStore) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("stores: failed to load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("stores: failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("stores: failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("stores: migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAnalysis persists a completed analysis.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, analysis *engine.Analysis) error {
	summary, err := json.Marshal(analysis.Summary)
	if err != nil {
		return fmt.Errorf("stores: failed to marshal summary: %w", err)
	}
	actions, err := json.Marshal(analysis.Actions)
	if err != nil {
		return fmt.Errorf("stores: failed to marshal actions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, row_count, summary, actions)
		 VALUES (?, ?, ?, ?, ?)`,
		analysis.ID, analysis.CreatedAt.UTC(), analysis.RowCount, string(summary), string(actions),
	)
	if err != nil {
		return fmt.Errorf("stores: failed to save analysis %s: %w", analysis.ID, err)
	}
	return nil
}

// GetAnalysis retrieves a persisted analysis by ID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*engine.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, row_count, summary, actions FROM analyses WHERE id = ?`, id)

	var (
		analysis engine.Analysis
		summary  string
		actions  string
	)
	if err := row.Scan(&analysis.ID, &analysis.CreatedAt, &analysis.RowCount, &summary, &actions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stores: failed to load analysis %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(summary), &analysis.Summary); err != nil {
		return nil, fmt.Errorf("stores: corrupt summary for analysis %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(actions), &analysis.Actions); err != nil {
		return nil, fmt.Errorf("stores: corrupt actions for analysis %s: %w", id, err)
	}
	return &analysis, nil
}

// ListAnalyses lists persisted analyses, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisInfo, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, row_count, summary FROM analyses
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("stores: failed to list analyses: %w", err)
	}
	defer rows.Close()

	var infos []AnalysisInfo
	for rows.Next() {
		var (
			info    AnalysisInfo
			summary string
		)
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.RowCount, &summary); err != nil {
			return nil, fmt.Errorf("stores: failed to scan analysis row: %w", err)
		}
		var s engine.Summary
		if err := json.Unmarshal([]byte(summary), &s); err == nil {
			info.TotalActions = s.TotalObjects
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
