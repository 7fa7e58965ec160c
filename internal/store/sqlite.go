package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"TariffSentinel/internal/model"
)

// SQLiteStore persists state to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers (sqlite3 CLI, dashboards) don't block the daemon.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.Infof("sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS series_values (
			series     TEXT PRIMARY KEY,
			value      REAL NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS series_names (
			series     TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) LoadValues() (map[model.SeriesKey]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT series, value FROM series_values`)
	if err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}
	defer rows.Close()

	values := make(map[model.SeriesKey]float64)
	for rows.Next() {
		var series string
		var value float64
		if err := rows.Scan(&series, &value); err != nil {
			return nil, fmt.Errorf("scan value row: %w", err)
		}
		values[model.SeriesKey(series)] = value
	}
	return values, rows.Err()
}

func (s *SQLiteStore) SaveValue(key model.SeriesKey, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO series_values (series, value, updated_at) VALUES (?,?,?)`,
		string(key), value, time.Now().Unix())
	return err
}

func (s *SQLiteStore) LoadNames() (map[model.SeriesKey]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT series, name FROM series_names`)
	if err != nil {
		return nil, fmt.Errorf("load names: %w", err)
	}
	defer rows.Close()

	names := make(map[model.SeriesKey]string)
	for rows.Next() {
		var series, name string
		if err := rows.Scan(&series, &name); err != nil {
			return nil, fmt.Errorf("scan name row: %w", err)
		}
		names[model.SeriesKey(series)] = name
	}
	return names, rows.Err()
}

func (s *SQLiteStore) SaveName(key model.SeriesKey, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO series_names (series, name, updated_at) VALUES (?,?,?)`,
		string(key), name, time.Now().Unix())
	return err
}

func (s *SQLiteStore) Close() error {
	logrus.Info("closing sqlite store")
	return s.db.Close()
}
