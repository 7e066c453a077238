package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
)

const (
	snapshotKey           = "qah:roster:snapshot"
	snapshotGenerationKey = "qah:roster:snapshot:generation"
	generationCounterKey  = "qah:roster:generation"
)

// RosterSnapshot is a committed roster together with the generation token of
// the fetch that produced it.
type RosterSnapshot struct {
	Generation int64        `json:"generation"`
	Today      domain.Date  `json:"today"`
	BuiltAt    time.Time    `json:"built_at"`
	Dates      []DateRoster `json:"dates"`
}

// SnapshotCache keeps the latest roster snapshot in Redis. Every refresh takes
// a generation before fetching and a commit only succeeds for a generation
// newer than the committed one, so a slow fetch that finishes late never
// replaces a fresher roster.
type SnapshotCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger

	committed atomic.Int64
}

func NewSnapshotCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{kv: kv, ttl: ttl, logger: logger}
}

// NextGeneration hands out a token before a fetch starts. Tokens are shared
// across processes through the KV counter.
func (c *SnapshotCache) NextGeneration(ctx context.Context) (int64, error) {
	gen, err := c.kv.Incr(ctx, generationCounterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate roster generation: %w", err)
	}
	return gen, nil
}

// Commit stores snap unless a snapshot with an equal or newer generation was
// already committed. The boolean reports whether snap was stored. The
// in-process generation only moves once the KV store accepted the write.
func (c *SnapshotCache) Commit(ctx context.Context, snap *RosterSnapshot) (bool, error) {
	if seen := c.committed.Load(); snap.Generation <= seen {
		c.logger.Debug("Discarding stale roster snapshot",
			zap.Int64("generation", snap.Generation),
			zap.Int64("committed_generation", seen),
		)
		return false, nil
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("failed to marshal roster snapshot: %w", err)
	}

	stored, err := c.kv.SetIfNewer(ctx, snapshotKey, snapshotGenerationKey, snap.Generation, string(jsonData), c.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to set roster snapshot: %w", err)
	}
	if !stored {
		c.logger.Debug("Roster snapshot superseded by another process",
			zap.Int64("generation", snap.Generation),
		)
		return false, nil
	}
	c.markCommitted(snap.Generation)

	c.logger.Debug("Updated roster snapshot",
		zap.Int64("generation", snap.Generation),
		zap.Int("date_count", len(snap.Dates)),
	)
	return true, nil
}

// markCommitted raises the committed generation to gen, never lowering it.
func (c *SnapshotCache) markCommitted(gen int64) {
	for {
		seen := c.committed.Load()
		if gen <= seen || c.committed.CompareAndSwap(seen, gen) {
			return
		}
	}
}

// Latest returns the last committed snapshot, or ErrCacheMiss.
func (c *SnapshotCache) Latest(ctx context.Context) (*RosterSnapshot, error) {
	raw, err := c.kv.Get(ctx, snapshotKey)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get roster snapshot: %w", err)
	}
	var snap RosterSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster snapshot: %w", err)
	}
	return &snap, nil
}
