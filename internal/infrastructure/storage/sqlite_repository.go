package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS publication_state (
    day          TEXT PRIMARY KEY,
    natural_keys TEXT NOT NULL,
    fingerprints TEXT NOT NULL,
    published    INTEGER NOT NULL,
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
)`

// SQLiteRepository persists the per-day publication record. Only "today" is
// retained: every save removes rows for any other day.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.StateRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (and if needed creates) the state database.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// Single writer; the store serializes access anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Load returns the record for the given day, if one was persisted.
func (r *SQLiteRepository) Load(ctx context.Context, day string) (domain.PublicationRecord, bool, error) {
	query, args, err := sq.
		Select("natural_keys", "fingerprints", "published").
		From("publication_state").
		Where(sq.Eq{"day": day}).
		ToSql()
	if err != nil {
		return domain.PublicationRecord{}, false, fmt.Errorf("build load query: %w", err)
	}

	var keysJSON, fpsJSON string
	var published int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&keysJSON, &fpsJSON, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PublicationRecord{}, false, nil
	}
	if err != nil {
		return domain.PublicationRecord{}, false, fmt.Errorf("load state: %w", err)
	}

	rec := domain.PublicationRecord{Day: day, Published: published}
	if err := json.Unmarshal([]byte(keysJSON), &rec.NaturalKeys); err != nil {
		return domain.PublicationRecord{}, false, fmt.Errorf("decode natural keys: %w", err)
	}
	if err := json.Unmarshal([]byte(fpsJSON), &rec.Fingerprints); err != nil {
		return domain.PublicationRecord{}, false, fmt.Errorf("decode fingerprints: %w", err)
	}

	return rec, true, nil
}

// Save upserts the record and drops rows for any other day.
func (r *SQLiteRepository) Save(ctx context.Context, rec domain.PublicationRecord) error {
	keysJSON, err := json.Marshal(keysOrEmpty(rec.NaturalKeys))
	if err != nil {
		return fmt.Errorf("encode natural keys: %w", err)
	}
	fpsJSON, err := json.Marshal(keysOrEmpty(rec.Fingerprints))
	if err != nil {
		return fmt.Errorf("encode fingerprints: %w", err)
	}

	upsert, upsertArgs, err := sq.
		Insert("publication_state").
		Columns("day", "natural_keys", "fingerprints", "published").
		Values(rec.Day, string(keysJSON), string(fpsJSON), rec.Published).
		Suffix(`ON CONFLICT(day) DO UPDATE SET
		    natural_keys = excluded.natural_keys,
		    fingerprints = excluded.fingerprints,
		    published = excluded.published,
		    updated_at = datetime('now')`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	prune, pruneArgs, err := sq.
		Delete("publication_state").
		Where(sq.NotEq{"day": rec.Day}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build prune: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, upsertArgs...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, prune, pruneArgs...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prune old days: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	return nil
}

func keysOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
