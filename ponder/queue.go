package ponder

import (
	"sync"

	"chessponder/board"
)

// isEmptyMove reports whether m is the distinguished "no move known" value.
// A real move always carries a non-Empty Piece, so the zero Move serves as
// the sentinel without needing a separate boolean everywhere.
func isEmptyMove(m board.Move) bool {
	return m.Piece == board.Empty
}

// completionQueue is the small shared context a controller task and its
// workers all hold a reference to: the completion event FIFO, the end flag,
// and the known opponent move, all under one mutex — nothing else the
// controller owns is ever touched under this lock. Workers only ever push;
// the controller task is the sole consumer, so it outlives every worker by
// construction (StopPrecomputation joins the task before the queue can go
// away).
type completionQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	pending   []int
	ended     bool
	knownMove board.Move
}

func newCompletionQueue() *completionQueue {
	q := &completionQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends index to the queue. Never blocks.
func (q *completionQueue) push(index int) {
	q.mu.Lock()
	q.pending = append(q.pending, index)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// signalEnd records the known opponent move (empty means "just stop") and
// wakes every waiter so it can re-check its predicate against the end flag
// rather than the queue length.
func (q *completionQueue) signalEnd(knownMove board.Move) {
	q.mu.Lock()
	q.ended = true
	q.knownMove = knownMove
	q.mu.Unlock()
	q.cond.Broadcast()
}

// waitForEvent blocks until predicate(pendingLen, ended) is true, then
// returns the indices pushed since the last drain and clears the buffer.
func (q *completionQueue) waitForEvent(predicate func(pendingLen int, ended bool) bool) []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !predicate(len(q.pending), q.ended) {
		q.cond.Wait()
	}
	drained := q.pending
	q.pending = nil
	return drained
}

// isEnded reports whether signalEnd has been called.
func (q *completionQueue) isEnded() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ended
}

// getKnownMove returns the move signalEnd was called with.
func (q *completionQueue) getKnownMove() board.Move {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.knownMove
}
