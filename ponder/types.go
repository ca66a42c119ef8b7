// Package ponder implements the parallel pondering search controller: while
// the opponent is thinking, it speculatively explores searches rooted at
// each plausible opponent reply, then either harvests a finished result or
// converts the still-running (or not-yet-started) search into the engine's
// direct reply the moment the opponent's move is known.
package ponder

import (
	"sync"
	"sync/atomic"
	"time"

	"chessponder/board"
	"chessponder/engine"
)

// TerminatedBy mirrors engine.TerminatedBy at the controller boundary so
// callers of this package can read a SearchResult without importing engine
// directly.
type TerminatedBy = engine.TerminatedBy

const (
	TerminatedCompleted = engine.TerminatedCompleted
	TerminatedDeadline  = engine.TerminatedDeadline
	TerminatedCancelled = engine.TerminatedCancelled
)

// SearchSpec is handed to a Search Worker. Root is owned by the worker; the
// worker never mutates anything the controller still holds a reference to.
type SearchSpec struct {
	Root          board.Position
	OpponentMove  board.Move
	DepthSchedule []int
	TTable        *ttSnapshot
	Deadline      time.Time
	CancelFlag    *atomic.Bool
}

// RankedMove pairs a move with its score, best first.
type RankedMove struct {
	Move  board.Move
	Score int
}

// SearchResult is produced by a worker. RankedMoves is empty iff the search
// was cancelled before any root-level move was evaluated.
type SearchResult struct {
	RankedMoves  []RankedMove
	TTableOut    *ttSnapshot
	ReachedDepth int
	TerminatedBy TerminatedBy
}

// BestMove returns the top-ranked move and whether one exists.
func (r SearchResult) BestMove() (board.Move, bool) {
	if len(r.RankedMoves) == 0 {
		return board.Move{}, false
	}
	return r.RankedMoves[0].Move, true
}

// SearchHandle is one per in-flight or completed worker, owned by the
// controller task. resultCh is the "future": it is written to exactly once
// by the worker and read from exactly once by the controller.
type SearchHandle struct {
	OpponentMove board.Move
	CancelFlag   *atomic.Bool
	Index        int

	resultCh chan SearchResult
	once     sync.Once
	result   SearchResult
}

// join blocks until the worker's result is available, caching it so
// concurrent callers (the controller's own commit pass, a background merge
// goroutine, and a caller's later Locator.Result lookup can all legitimately
// race to be first) all observe the same result without re-reading a
// drained channel.
func (h *SearchHandle) join() SearchResult {
	h.once.Do(func() {
		h.result = <-h.resultCh
	})
	return h.result
}

// Locator points at the SearchHandle whose OpponentMove matches the move
// passed to StopPrecomputation, or is the zero value (Found() == false) if
// no such handle exists.
type Locator struct {
	handle *SearchHandle
}

// Found reports whether the locator refers to a real handle.
func (l Locator) Found() bool {
	return l.handle != nil
}

// Result returns the located handle's SearchResult. Panics if !Found(); a
// caller must check Found first, same as dereferencing an end iterator.
func (l Locator) Result() SearchResult {
	return l.handle.join()
}

// OpponentMove returns the move the located handle is rooted at.
func (l Locator) OpponentMove() board.Move {
	return l.handle.OpponentMove
}
