package ponder

import (
	"chessponder/board"
	"chessponder/engine"
)

// runWorker executes one black-box iterative-deepening search to
// completion, cancellation, or deadline, then posts exactly one completion
// event before returning. A search cancelled before completing even one
// depth simply reports an empty ranked-move list; the caller treats that
// the same as any other branch that yielded nothing usable.
func runWorker(handle *SearchHandle, spec SearchSpec, pieceMoves board.PieceMoves, queue *completionQueue) {
	session := engine.NewSession(1) // table is replaced below; size is irrelevant
	session.TT = spec.TTable

	out := session.IterativeDeepening(spec.Root, pieceMoves, spec.DepthSchedule, spec.Deadline, spec.CancelFlag, true)

	result := SearchResult{
		RankedMoves:  toRankedMoves(out.RankedMoves),
		TTableOut:    session.TT,
		ReachedDepth: out.Depth,
		TerminatedBy: out.TerminatedBy,
	}

	handle.resultCh <- result
	queue.push(handle.Index)
}

func toRankedMoves(in []engine.RankedMove) []RankedMove {
	if in == nil {
		return nil
	}
	out := make([]RankedMove, len(in))
	for i, rm := range in {
		out[i] = RankedMove{Move: rm.Move, Score: rm.Score}
	}
	return out
}
