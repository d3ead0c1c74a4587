package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pagecraft/pagecraft/domain/usage"
	"github.com/pagecraft/pagecraft/ports"
)

// UsageStore implements ports.UsageStore using SQLite.
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new SQLite usage store.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// Get retrieves the record for a key.
func (s *UsageStore) Get(ctx context.Context, key string) (usage.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT request_count, image_count, last_updated
		FROM usage_records WHERE key = ?
	`, key)

	var record usage.Record
	err := row.Scan(&record.RequestCount, &record.ImageCount, &record.LastUpdated)
	if err == sql.ErrNoRows {
		return usage.Record{}, false, nil
	}
	if err != nil {
		return usage.Record{}, false, err
	}
	return record, true, nil
}

// Set overwrites the record for a key wholesale.
func (s *UsageStore) Set(ctx context.Context, key string, record usage.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (key, request_count, image_count, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			request_count = excluded.request_count,
			image_count = excluded.image_count,
			last_updated = excluded.last_updated
	`, key, record.RequestCount, record.ImageCount, record.LastUpdated.UTC())
	return err
}

// Increment atomically commits one request using the given number of images.
// The upsert runs as a single statement, so concurrent commits never tear.
func (s *UsageStore) Increment(ctx context.Context, key string, images int, now time.Time) (usage.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO usage_records (key, request_count, image_count, last_updated)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			request_count = request_count + 1,
			image_count = image_count + excluded.image_count,
			last_updated = excluded.last_updated
		RETURNING request_count, image_count, last_updated
	`, key, images, now.UTC())

	var record usage.Record
	if err := row.Scan(&record.RequestCount, &record.ImageCount, &record.LastUpdated); err != nil {
		return usage.Record{}, err
	}
	return record, nil
}

// Reset clears every record (for test isolation).
func (s *UsageStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM usage_records")
	return err
}

// PruneBefore removes records last updated before the cutoff.
func (s *UsageStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM usage_records WHERE last_updated < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
