package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	deadline    time.Time
	processedAt time.Time
}

// MemoryRegistry is an in-memory implementation of the ProcessedRegistry
// interface. With a zero TTL entries never expire, which is the default: the
// processed set grows monotonically for the life of the process.
type MemoryRegistry struct {
	entries     map[string]memoryEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryRegistry creates a new in-memory processed registry
func NewMemoryRegistry(logger *zap.Logger, ttl, cleanupFreq time.Duration) *MemoryRegistry {
	r := &MemoryRegistry{
		entries:     make(map[string]memoryEntry),
		logger:      logger,
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if ttl > 0 && cleanupFreq > 0 {
		go r.startCleanupTask()
	}

	return r
}

// Seen reports whether the message ID has been recorded
func (r *MemoryRegistry) Seen(_ context.Context, messageID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[messageID]
	if !ok {
		return false, nil
	}
	if r.ttl > 0 && time.Since(entry.processedAt) > r.ttl {
		return false, nil
	}
	return true, nil
}

// Mark records a message ID together with the deadline it produced
func (r *MemoryRegistry) Mark(_ context.Context, messageID string, deadline time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[messageID] = memoryEntry{
		deadline:    deadline,
		processedAt: time.Now(),
	}
	return nil
}

// Cleanup removes expired entries
func (r *MemoryRegistry) Cleanup(_ context.Context) error {
	if r.ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	expiredCount := 0
	for id, entry := range r.entries {
		if time.Since(entry.processedAt) > r.ttl {
			delete(r.entries, id)
			expiredCount++
		}
	}

	r.logger.Debug("Cleaned up expired registry entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (r *MemoryRegistry) startCleanupTask() {
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

// Stop stops the background cleanup task
func (r *MemoryRegistry) Stop() {
	close(r.stopCh)
}
