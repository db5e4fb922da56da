package services

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"finboard/internal/cache"
	apperrors "finboard/internal/errors"
	"finboard/internal/events"
	"finboard/internal/logger"
	"finboard/internal/models"
)

// snapshotService caches each owner's full transaction list. Entries are
// dropped when a change event for the owner arrives; the TTL bounds
// staleness if an event is lost.
type snapshotService struct {
	source TransactionServicer
	store  *cache.LRUCache[[]models.Transaction]
	loads  singleflight.Group

	mu          sync.Mutex
	epoch       uint64
	generations map[string]uint64
}

// NewSnapshotService creates a SnapshotServicer reading through store.
// Returned snapshots are shared and must be treated as read-only.
func NewSnapshotService(source TransactionServicer, store *cache.LRUCache[[]models.Transaction]) SnapshotServicer {
	return &snapshotService{
		source:      source,
		store:       store,
		generations: make(map[string]uint64),
	}
}

func (s *snapshotService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch + s.generations[userID]
}

// Snapshot returns the cached snapshot or loads it. Concurrent misses for
// the same owner share one query, which outlives any single caller's
// cancellation; each caller still returns once its own ctx is done.
func (s *snapshotService) Snapshot(ctx context.Context, userID string) ([]models.Transaction, error) {
	if txs, ok := s.store.Get(userID); ok {
		return txs, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	results := s.loads.DoChan(userID, func() (interface{}, error) {
		gen := s.generation(userID)
		txs, err := s.source.Snapshot(loadCtx, userID)
		if err != nil {
			return nil, err
		}
		// An invalidation during the load means txs may already be stale.
		if s.generation(userID) == gen {
			s.store.Set(userID, txs)
		}
		return txs, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.ErrPersistence, ctx.Err())
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Transaction), nil
	}
}

// Invalidate drops the owner's cached snapshot. An empty userID drops all.
func (s *snapshotService) Invalidate(userID string) {
	s.mu.Lock()
	if userID == "" {
		s.epoch++
	} else {
		s.generations[userID]++
	}
	s.mu.Unlock()

	if userID == "" {
		s.store.Purge()
		return
	}
	s.loads.Forget(userID)
	s.store.Delete(userID)
}

// Run invalidates snapshots for every change event on hub until ctx is done.
// It watches rather than subscribes, so a burst of events cannot be dropped.
func (s *snapshotService) Run(ctx context.Context, hub *events.Hub) error {
	log := logger.Named("snapshots")
	stop := hub.Watch("", func(ev events.ChangeEvent) {
		s.Invalidate(ev.UserID)
		log.Debugw("Snapshot invalidated", "user_id", ev.UserID, "op", ev.Op)
	})
	defer stop()

	log.Infow("Snapshot invalidator started")
	<-ctx.Done()
	return nil
}
