package ponder

import (
	"sync"
	"testing"
	"time"

	"chessponder/board"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionQueue_PushThenWaitDrainsPending(t *testing.T) {
	q := newCompletionQueue()
	q.push(3)
	q.push(1)

	drained := q.waitForEvent(func(pendingLen int, ended bool) bool { return pendingLen > 0 })
	assert.Equal(t, []int{3, 1}, drained)

	// A second wait with nothing new pending and not ended would block
	// forever, so only isEnded/getKnownMove are exercised from here.
	assert.False(t, q.isEnded())
}

func TestCompletionQueue_SignalEndWakesBlockedWaiter(t *testing.T) {
	q := newCompletionQueue()
	knownMove := board.Move{Piece: board.Queen, From: 1 << 3, To: 1 << 35}

	var wg sync.WaitGroup
	wg.Add(1)
	var drained []int
	go func() {
		defer wg.Done()
		drained = q.waitForEvent(func(pendingLen int, ended bool) bool { return pendingLen > 0 || ended })
	}()

	// Give the waiter a chance to actually start blocking on cond.Wait.
	time.Sleep(20 * time.Millisecond)
	q.signalEnd(knownMove)

	wg.Wait()
	assert.Empty(t, drained)
	assert.True(t, q.isEnded())
	assert.Equal(t, knownMove, q.getKnownMove())
}

func TestCompletionQueue_SignalEndEmptyMoveMeansJustStop(t *testing.T) {
	q := newCompletionQueue()
	q.signalEnd(board.Move{})

	require.True(t, q.isEnded())
	assert.True(t, isEmptyMove(q.getKnownMove()))
}
