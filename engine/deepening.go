package engine

import (
	"slices"
	"sync/atomic"
	"time"

	"chessponder/board"
)

// TerminatedBy reports why IterativeDeepening stopped.
type TerminatedBy int

const (
	TerminatedCompleted TerminatedBy = iota // the depth loop ended without being cut off: schedule exhausted, mate found, or a quarter of the deadline budget already used after a depth
	TerminatedDeadline                      // the absolute deadline passed
	TerminatedCancelled                     // the caller's cancel flag was set
)

// RankedMove pairs a root move with the score the search assigned it at the
// depth that produced DeepeningResult.RankedMoves.
type RankedMove struct {
	Move  board.Move
	Score int
}

// DeepeningResult is the outcome of a deadline-and-cancel-driven iterative
// deepening search, generalizing SearchResultTimed with the ranked move list
// and termination reason a pondering controller needs to decide whether a
// worker's result is still usable.
type DeepeningResult struct {
	Move         board.Move
	Score        int
	Depth        int
	Nodes        int64
	Time         time.Duration
	RankedMoves  []RankedMove
	TerminatedBy TerminatedBy
}

// IterativeDeepening searches pos over depths, in order, until either the
// schedule is exhausted, the deadline passes, or cancel is set (deadline may
// be the zero Time and cancel may be nil for unbounded callers such as
// shallow opponent analysis). When recordMoves is true, DeepeningResult.
// RankedMoves carries every root move from the last completed depth, best
// score first.
func (s *Session) IterativeDeepening(pos board.Position, pieceMoves board.PieceMoves, depths []int, deadline time.Time, cancel *atomic.Bool, recordMoves bool) DeepeningResult {
	s.clearKillers()
	s.clearHistory()

	ctx := newDeadlineSearchContext(deadline, cancel)

	var best DeepeningResult
	reachedAnyDepth := false

	for i, depth := range depths {
		result, ranked := s.searchRootDepthRanked(pos, pieceMoves, depth, ctx, recordMoves)

		if ctx.stopped.Load() && i > 0 {
			break
		}

		reachedAnyDepth = true
		best = DeepeningResult{
			Move:        result.Move,
			Score:       result.Score,
			Depth:       depth,
			Nodes:       ctx.nodes,
			Time:        ctx.Elapsed(),
			RankedMoves: ranked,
		}

		if result.Score > mateScore-100 || result.Score < -mateScore+100 {
			break
		}
		if !ctx.deadline.IsZero() && ctx.Elapsed()*4 >= ctx.timeLimit {
			break
		}
		if ctx.checkTimeout() {
			break
		}
	}

	if !reachedAnyDepth || ctx.stopped.Load() {
		best.TerminatedBy = terminationReason(cancel)
	} else {
		best.TerminatedBy = TerminatedCompleted
	}

	return best
}

func terminationReason(cancel *atomic.Bool) TerminatedBy {
	if cancel != nil && cancel.Load() {
		return TerminatedCancelled
	}
	return TerminatedDeadline
}

// searchRootDepthRanked is searchRootDepth generalized to also return every
// root move's score at this depth, sorted best-first from the mover's
// perspective, when recordMoves is requested.
func (s *Session) searchRootDepthRanked(pos board.Position, pieceMoves board.PieceMoves, depth int, ctx *SearchContext, recordMoves bool) (SearchResult, []RankedMove) {
	moves := pos.GenerateLegalMoves(pieceMoves)
	sortMoves(moves)

	if len(moves) == 0 {
		if pos.IsInCheck() {
			if pos.WhiteMove {
				return SearchResult{Score: -mateScore}, nil
			}
			return SearchResult{Score: mateScore}, nil
		}
		return SearchResult{Score: 0}, nil
	}

	var bestMove board.Move
	var bestScore int
	var ranked []RankedMove
	if recordMoves {
		ranked = make([]RankedMove, 0, len(moves))
	}

	alpha := -infinity
	beta := infinity

	if pos.WhiteMove {
		bestScore = -infinity
		for _, move := range moves {
			undo := pos.MakeMove(move)
			score := s.alphaBeta(&pos, pieceMoves, depth-1, alpha, beta, true, ctx)
			pos.UnmakeMove(move, undo)

			if ctx.stopped.Load() {
				break
			}
			if recordMoves {
				ranked = append(ranked, RankedMove{Move: move, Score: score})
			}
			if score > bestScore {
				bestScore = score
				bestMove = move
			}
			if score > alpha {
				alpha = score
			}
		}
		if recordMoves {
			slices.SortFunc(ranked, func(a, b RankedMove) int { return b.Score - a.Score })
		}
	} else {
		bestScore = infinity
		for _, move := range moves {
			undo := pos.MakeMove(move)
			score := s.alphaBeta(&pos, pieceMoves, depth-1, alpha, beta, true, ctx)
			pos.UnmakeMove(move, undo)

			if ctx.stopped.Load() {
				break
			}
			if recordMoves {
				ranked = append(ranked, RankedMove{Move: move, Score: score})
			}
			if score < bestScore {
				bestScore = score
				bestMove = move
			}
			if score < beta {
				beta = score
			}
		}
		if recordMoves {
			slices.SortFunc(ranked, func(a, b RankedMove) int { return a.Score - b.Score })
		}
	}

	return SearchResult{Move: bestMove, Score: bestScore, Nodes: ctx.nodes}, ranked
}
