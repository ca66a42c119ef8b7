package ponder

import (
	"sync"

	"chessponder/board"
	"chessponder/engine"
)

// ttSnapshot is the table type handed to a worker. It is always a pruned,
// independently-owned copy of the cumulative table; workers never see the
// controller's own table and never share memory with each other.
type ttSnapshot = engine.TranspositionTable

// ttService owns the single cumulative transposition table and produces
// per-worker snapshots. Conceptually the table is single-writer — only the
// controller task updates it, and only between spawns — but a committed
// search's merge can still be in flight (in a background goroutine) the
// instant a new StartPrecomputation begins a fresh run, so cumulative is
// guarded by a mutex rather than left to that single-writer assumption.
type ttService struct {
	mu         sync.Mutex
	cumulative *ttSnapshot
}

func newTTService(hashSizeMB int) *ttService {
	return &ttService{cumulative: engine.NewTranspositionTable(hashSizeMB)}
}

// snapshotFor returns a pruned copy of the cumulative table for a worker
// rooted at root. The cumulative table is left untouched.
func (s *ttService) snapshotFor(root board.Position) *ttSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cumulative.Prune(root)
}

// commit folds a committed worker's resulting table back into the
// cumulative table, preferring deeper entries at each shared slot.
// Speculative workers' tables are simply dropped by the caller.
func (s *ttService) commit(incoming *ttSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cumulative.Merge(incoming)
}
