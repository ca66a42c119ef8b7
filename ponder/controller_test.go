package ponder

import (
	"testing"

	"chessponder/board"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, cfg Config) (*Controller, board.Position) {
	t.Helper()
	pos := board.CreatePositionFormFEN(kingEndgameFEN)
	return NewController(cfg, pos, true), pos
}

func TestStartPrecomputation_FailsWhenAlreadyBusy(t *testing.T) {
	c, _ := newTestController(t, tinyConfig())

	require.NoError(t, c.StartPrecomputation())
	defer c.StopPrecomputation(board.Move{})

	err := c.StartPrecomputation()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStopPrecomputation_WhileIdleIsNoOp(t *testing.T) {
	c, _ := newTestController(t, tinyConfig())

	loc := c.StopPrecomputation(board.Move{})
	assert.False(t, loc.Found())
}

func TestStopPrecomputation_EmptyMoveReturnsToIdle(t *testing.T) {
	c, _ := newTestController(t, tinyConfig())

	require.NoError(t, c.StartPrecomputation())
	loc := c.StopPrecomputation(board.Move{})
	assert.False(t, loc.Found())

	// The controller must be usable again immediately.
	require.NoError(t, c.StartPrecomputation())
	c.StopPrecomputation(board.Move{})
}

func TestStopPrecomputation_HitReturnsMatchingHandle(t *testing.T) {
	replies := legalRepliesAt(kingEndgameFEN)
	require.Len(t, replies, 2)
	knownMove := replies[0]

	c, _ := newTestController(t, tinyConfig())
	require.NoError(t, c.StartPrecomputation())

	loc := c.StopPrecomputation(knownMove)
	require.True(t, loc.Found())
	assert.Equal(t, knownMove, loc.OpponentMove())

	result := loc.Result()
	assert.Equal(t, TerminatedCompleted, result.TerminatedBy)
	assert.NotEmpty(t, result.RankedMoves)
}

func TestStopPrecomputation_MissSpawnsFreshCommittedSearch(t *testing.T) {
	replies := legalRepliesAt(kingEndgameFEN)
	require.Len(t, replies, 2)

	// Same king, teleported to a square neither real reply lands on: this
	// can never equal a speculatively-spawned handle's OpponentMove, so
	// StopPrecomputation is guaranteed to take the miss path.
	unseenMove := board.Move{Piece: board.King, From: replies[0].From, To: board.IndexToBitBoard(27)}

	c, _ := newTestController(t, tinyConfig())
	require.NoError(t, c.StartPrecomputation())

	loc := c.StopPrecomputation(unseenMove)
	require.True(t, loc.Found())
	assert.Equal(t, unseenMove, loc.OpponentMove())

	result := loc.Result()
	assert.Equal(t, TerminatedCompleted, result.TerminatedBy)
	assert.NotEmpty(t, result.RankedMoves)
}

func TestReset_MidFlightReturnsControllerToIdle(t *testing.T) {
	c, pos := newTestController(t, tinyConfig())

	require.NoError(t, c.StartPrecomputation())
	c.Reset(pos, true)

	require.NoError(t, c.StartPrecomputation())
	c.StopPrecomputation(board.Move{})
}

func TestRun_NeverSpawnsMoreHandlesThanCandidates(t *testing.T) {
	cfg := tinyConfig()
	cfg.MaxParallel = 1 // fewer workers than the 2 legal replies

	c, _ := newTestController(t, cfg)
	require.NoError(t, c.StartPrecomputation())

	loc := c.StopPrecomputation(board.Move{})
	assert.False(t, loc.Found())
	assert.LessOrEqual(t, len(c.handles), 2)
	assert.GreaterOrEqual(t, len(c.handles), 1)
}

func TestStopPrecomputation_CommitsWinningHandleTableIntoCumulative(t *testing.T) {
	replies := legalRepliesAt(kingEndgameFEN)
	require.Len(t, replies, 2)
	knownMove := replies[0]

	c, _ := newTestController(t, tinyConfig())
	require.NoError(t, c.StartPrecomputation())

	loc := c.StopPrecomputation(knownMove)
	require.True(t, loc.Found())
	result := loc.Result()
	require.NotNil(t, result.TTableOut)

	// The background merge spawned by StopPrecomputation races with this
	// goroutine, but it only ever grows the cumulative table's contents
	// (never shrinks it) once result is available, so a second run reusing
	// the same controller's tt must still work from a superset of that data.
	c.tt.commit(result.TTableOut)
	assert.Equal(t, result.TTableOut.Size(), c.tt.cumulative.Size())
}
