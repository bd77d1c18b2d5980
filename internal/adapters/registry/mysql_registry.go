package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLRegistry is a MySQL implementation of the ProcessedRegistry
// interface for deployments that already run a MySQL instance.
type MySQLRegistry struct {
	db          *sql.DB
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLRegistry creates a new MySQL processed registry
func NewMySQLRegistry(dsn string, logger *zap.Logger, ttl, cleanupFreq time.Duration) (*MySQLRegistry, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id VARCHAR(255) PRIMARY KEY,
			deadline_date TIMESTAMP NULL,
			processed_at TIMESTAMP,
			INDEX idx_processed_at (processed_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	r := &MySQLRegistry{
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
func (r *MySQLRegistry) Seen(ctx context.Context, messageID string) (bool, error) {
	var processedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT processed_at FROM processed_messages WHERE message_id = ?
	`, messageID).Scan(&processedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query registry: %w", err)
	}

	if r.ttl > 0 && time.Since(processedAt) > r.ttl {
		return false, nil
	}
	return true, nil
}

// Mark records a message ID together with the deadline it produced
func (r *MySQLRegistry) Mark(ctx context.Context, messageID string, deadline time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO processed_messages (message_id, deadline_date, processed_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE deadline_date = VALUES(deadline_date), processed_at = VALUES(processed_at)
	`, messageID, deadline, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert registry entry: %w", err)
	}
	return nil
}

// Cleanup removes entries older than the TTL
func (r *MySQLRegistry) Cleanup(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM processed_messages WHERE processed_at <= ?
	`, time.Now().Add(-r.ttl))
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
func (r *MySQLRegistry) startCleanupTask() {
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
func (r *MySQLRegistry) Stop() {
	close(r.stopCh)
	if err := r.db.Close(); err != nil {
		r.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
