package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/model"
)

// timeLayout is fixed width so that fetched_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store interface {
	Store(ctx context.Context, snapshot *model.Snapshot) error
	Recent(ctx context.Context, limit int) ([]*model.Snapshot, error)
	Count(ctx context.Context) (int64, error)
	Cleanup(ctx context.Context, maxAge time.Duration) error
	Close() error
}

type SQLiteStore struct {
	log *slog.Logger
	db  *sql.DB
}

func NewSQLiteStore(log *slog.Logger, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{
		log: log,
		db:  db,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			fetched_at TEXT NOT NULL,
			readings_json TEXT NOT NULL,
			danger INTEGER NOT NULL DEFAULT 0,
			warning INTEGER NOT NULL DEFAULT 0,
			normal INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Store(ctx context.Context, snapshot *model.Snapshot) error {
	readingsJSON, err := json.Marshal(snapshot.Readings)
	if err != nil {
		return fmt.Errorf("failed to marshal readings: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, fetched_at, readings_json, danger, warning, normal)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.FetchedAt.UTC().Format(timeLayout),
		string(readingsJSON),
		snapshot.Counts[model.TierDanger],
		snapshot.Counts[model.TierWarning],
		snapshot.Counts[model.TierNormal],
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.log.Debug("snapshot stored", slog.String("id", snapshot.ID))
	return nil
}

// Recent returns up to limit snapshots, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*model.Snapshot, error) {
	query := `
		SELECT id, fetched_at, readings_json, danger, warning, normal
		FROM snapshots
		ORDER BY fetched_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*model.Snapshot, 0)
	for rows.Next() {
		var (
			id, fetchedAtStr, readingsJSON string
			danger, warning, normal        int
		)

		if err := rows.Scan(&id, &fetchedAtStr, &readingsJSON, &danger, &warning, &normal); err != nil {
			s.log.Error("failed to scan row", sl.Err(err))
			continue
		}

		fetchedAt, err := time.Parse(timeLayout, fetchedAtStr)
		if err != nil {
			s.log.Error("failed to parse timestamp", sl.Err(err))
			continue
		}

		var readings []model.SensorReading
		if err := json.Unmarshal([]byte(readingsJSON), &readings); err != nil {
			s.log.Error("failed to unmarshal readings", sl.Err(err))
			continue
		}

		snapshots = append(snapshots, &model.Snapshot{
			ID:        id,
			FetchedAt: fetchedAt,
			Readings:  readings,
			Counts: map[model.Tier]int{
				model.TierDanger:  danger,
				model.TierWarning: warning,
				model.TierNormal:  normal,
			},
		})
	}

	return snapshots, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&count)
	return count, err
}

func (s *SQLiteStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge).Format(timeLayout)

	result, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE fetched_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old snapshots: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		s.log.Info("cleaned up old snapshots", slog.Int64("deleted", deleted))
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
