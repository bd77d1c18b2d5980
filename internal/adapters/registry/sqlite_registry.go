package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteRegistry is a SQLite implementation of the ProcessedRegistry
// interface, giving the dedup guard a memory that survives restarts.
type SQLiteRegistry struct {
	db          *sql.DB
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteRegistry creates a new SQLite processed registry
func NewSQLiteRegistry(dbPath string, logger *zap.Logger, ttl, cleanupFreq time.Duration) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id TEXT PRIMARY KEY,
			deadline_date TIMESTAMP,
			processed_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_messages(processed_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	r := &SQLiteRegistry{
		db:          db,
		logger:      logger,
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if ttl > 0 && cleanupFreq > 0 {
		go r.startCleanupTask()
	}

	return r, nil
}

// Seen reports whether the message ID has been recorded
func (r *SQLiteRegistry) Seen(ctx context.Context, messageID string) (bool, error) {
	var processedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT processed_at FROM processed_messages WHERE message_id = ?
	`, messageID).Scan(&processedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query registry: %w", err)
	}

	if r.ttl > 0 {
		ts, err := time.Parse(time.RFC3339, processedAt)
		if err != nil {
			r.logger.Error("Failed to parse processed_at timestamp", zap.Error(err))
			return true, nil
		}
		if time.Since(ts) > r.ttl {
			return false, nil
		}
	}
	return true, nil
}

// Mark records a message ID together with the deadline it produced
func (r *SQLiteRegistry) Mark(ctx context.Context, messageID string, deadline time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO processed_messages (message_id, deadline_date, processed_at)
		VALUES (?, ?, ?)
	`, messageID, deadline.Format(time.RFC3339), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert registry entry: %w", err)
	}
	return nil
}

// Cleanup removes entries older than the TTL
func (r *SQLiteRegistry) Cleanup(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-r.ttl).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM processed_messages WHERE processed_at <= ?
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		r.logger.Debug("Cleaned up expired registry entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (r *SQLiteRegistry) startCleanupTask() {
	ticker := time.NewTicker(r.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Cleanup(context.Background()); err != nil {
				r.logger.Error("Failed to clean up registry", zap.Error(err))
			}
		case <-r.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (r *SQLiteRegistry) Stop() {
	close(r.stopCh)
	if err := r.db.Close(); err != nil {
		r.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
