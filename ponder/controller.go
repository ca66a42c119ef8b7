package ponder

import (
	"sync"
	"sync/atomic"
	"time"

	"chessponder/board"
	"chessponder/engine"
	"chessponder/generator"
)

type controllerState int32

const (
	stateIdle controllerState = iota
	stateBusy                 // OpponentAnalysis, Spawning, Steady or Commit; the API only distinguishes Idle from not
)

// Controller is the speculative scheduler: it launches a shallow
// opponent-move analysis, spawns up to Config.MaxParallel worker searches
// rooted at the candidate replies, tops them up as they complete, and
// drives the race-free commit protocol when the opponent's real move
// becomes known.
type Controller struct {
	cfg        Config
	logger     *engine.Logger
	pieceMoves board.PieceMoves
	tt         *ttService

	apiMu    sync.Mutex // serializes Start/Stop/Reset and guards state/taskDone
	state    controllerState
	taskDone chan struct{}

	root        board.Position // owned by the controller between runs
	engineWhite bool

	ctx       *completionQueue // fresh per run
	handles   []*SearchHandle  // touched only by the running controller task
	nextIndex int
}

// NewController builds an Idle controller rooted at root, with the engine
// playing engineWhite. cfg's zero value is not usable; pass DefaultConfig()
// or a variant of it.
func NewController(cfg Config, root board.Position, engineWhite bool) *Controller {
	return &Controller{
		cfg:         cfg,
		pieceMoves:  generator.NewGenerator(),
		tt:          newTTService(cfg.HashMB),
		root:        root,
		engineWhite: engineWhite,
	}
}

// SetLogger installs an optional debug logger for pondering events. A nil
// logger (the default) disables logging entirely; every call site goes
// through engine.Logger.Log, which is nil-safe.
func (c *Controller) SetLogger(l *engine.Logger) {
	c.logger = l
}

// StartPrecomputation begins the state machine against the controller's
// current root position and engine color. It returns immediately; the
// controller task runs asynchronously. Fails with ErrInvalidState unless
// the controller is Idle.
func (c *Controller) StartPrecomputation() error {
	c.apiMu.Lock()
	defer c.apiMu.Unlock()

	if c.state != stateIdle {
		return ErrInvalidState
	}

	c.state = stateBusy
	c.ctx = newCompletionQueue()
	c.handles = nil
	c.nextIndex = 0
	c.taskDone = make(chan struct{})

	root := c.root
	done := c.taskDone
	go c.run(root, done)

	return nil
}

// StopPrecomputation drives the commit transition and blocks until the
// controller task has joined. Idempotent: a call while Idle is a no-op that
// returns a not-found Locator. knownMove may be the empty move, meaning
// "stop pondering, no move to commit to".
func (c *Controller) StopPrecomputation(knownMove board.Move) Locator {
	c.apiMu.Lock()
	if c.state == stateIdle {
		c.apiMu.Unlock()
		return Locator{}
	}
	ctx := c.ctx
	done := c.taskDone
	c.apiMu.Unlock()

	ctx.signalEnd(knownMove)
	<-done

	c.apiMu.Lock()
	c.state = stateIdle
	handles := c.handles
	c.apiMu.Unlock()

	if isEmptyMove(knownMove) {
		return Locator{}
	}
	for _, h := range handles {
		if h.OpponentMove == knownMove {
			// Fold the committed branch's learning into the cumulative
			// table once it finishes. join() is safe to race with any
			// other caller of it (the handle's own sync.Once), and this
			// never blocks StopPrecomputation's return: if the search is
			// still running (hit-running), the merge simply happens
			// later, whenever the caller eventually drains the locator.
			go func(h *SearchHandle) {
				result := h.join()
				c.tt.commit(result.TTableOut)
				c.logger.Log(pondLogLine("PONDER-COMMIT", h.Index))
			}(h)
			return Locator{handle: h}
		}
	}
	return Locator{}
}

// Reset stops any precomputation (as StopPrecomputation(empty move)), then
// clears active handles and re-roots the controller at root/engineWhite.
// The cumulative transposition table is left untouched — it is what carries
// learning across successive opponent turns, and a reset just repositions
// the controller for the next one. Safe to call in any state.
func (c *Controller) Reset(root board.Position, engineWhite bool) {
	c.StopPrecomputation(board.Move{})

	c.apiMu.Lock()
	defer c.apiMu.Unlock()
	c.root = root
	c.engineWhite = engineWhite
	c.handles = nil
	c.ctx = nil
}

// run is the controller task: opponent analysis, the initial spawn, the
// steady top-up loop, then the final commit/cancel pass once the steady
// loop ends, for whatever reason it ended.
func (c *Controller) run(root board.Position, done chan struct{}) {
	defer close(done)

	ctx := c.ctx

	// The opponent-analysis search runs as whoever is to move in root
	// (the opponent, since precomputation starts right after the engine's
	// own move). It works from a pruned snapshot of the cumulative table
	// and its own (possibly improved) copy becomes the pruning base for
	// every worker snapshot this run spawns, rather than re-pruning fresh
	// from the cumulative table each time.
	workingTT := c.tt.snapshotFor(root)
	analysisSession := engine.NewSession(1)
	analysisSession.TT = workingTT
	analysis := analysisSession.IterativeDeepening(root, c.pieceMoves, c.cfg.OpponentSearchDepths, time.Time{}, nil, true)
	c.logger.Log(pondLogLine("PONDER-ANALYSIS", len(analysis.RankedMoves)))

	candidates := analysis.RankedMoves
	if len(candidates) == 0 {
		// Terminal position: nothing to ponder. Nothing was spawned, so
		// there is nothing left to do but let the task end.
		return
	}

	spawnCount := c.cfg.MaxParallel
	if spawnCount > len(candidates) {
		spawnCount = len(candidates)
	}

	deadline := time.Now().Add(c.cfg.MaxSearchDuration)
	for i := 0; i < spawnCount; i++ {
		c.spawnSpeculative(root, workingTT, candidates[i].Move, deadline, ctx)
	}
	nextToSpawn := spawnCount

	completed := 0
	for completed < len(candidates) {
		drained := ctx.waitForEvent(func(pendingLen int, ended bool) bool {
			return pendingLen > 0 || ended
		})

		completed += len(drained)

		if nextToSpawn < len(candidates) {
			for range drained {
				if nextToSpawn >= len(candidates) {
					break
				}
				c.spawnSpeculative(root, workingTT, candidates[nextToSpawn].Move, deadline, ctx)
				nextToSpawn++
			}
		}

		if ctx.isEnded() {
			break
		}
	}

	// Whether the steady loop exited because every candidate finished or
	// because the end flag was observed, the finalize pass runs once the end
	// flag is set, so the known move is final by then: it cancels anything
	// not matching that move and, on a genuine miss, spawns the committed
	// search.
	ctx.waitForEvent(func(_ int, ended bool) bool { return ended })
	c.finalize(ctx, workingTT)
}

// spawnSpeculative makes move on a clone of root, snapshots the cumulative
// table pruned to the resulting position, and launches a worker there.
// board.Position is a small value type cheap to copy, so there is no need
// for a separate make/unmake dance here: copy once, then mutate the copy.
func (c *Controller) spawnSpeculative(root board.Position, workingTT *ttSnapshot, move board.Move, deadline time.Time, ctx *completionQueue) {
	next := root
	next.MakeMove(move)

	cancel := &atomic.Bool{}
	handle := &SearchHandle{
		OpponentMove: move,
		CancelFlag:   cancel,
		Index:        c.nextIndex,
		resultCh:     make(chan SearchResult, 1),
	}
	c.nextIndex++
	c.handles = append(c.handles, handle)

	spec := SearchSpec{
		Root:          next,
		OpponentMove:  move,
		DepthSchedule: c.cfg.SearchDepths,
		TTable:        workingTT.Prune(next),
		Deadline:      deadline,
		CancelFlag:    cancel,
	}
	c.logger.Log(pondLogLine("PONDER-SPAWN", handle.Index))
	go runWorker(handle, spec, c.pieceMoves, ctx)
}

// finalize performs the cancellation half of the commit transition: every
// handle not rooted at the current known move gets its cancel flag set and
// is awaited here, so every loser has actually stopped by the time
// StopPrecomputation returns. On a genuine miss (known move non-empty and
// unmatched), a fresh committed search is spawned so StopPrecomputation can
// still locate it afterward. The matching handle, if any, is deliberately
// left running and unawaited — StopPrecomputation folds its table into the
// cumulative table in the background once it completes, whether that is
// before or long after this call returns.
func (c *Controller) finalize(ctx *completionQueue, workingTT *ttSnapshot) {
	knownMove := ctx.getKnownMove()

	var matched *SearchHandle
	var toCancel []*SearchHandle
	for _, h := range c.handles {
		if !isEmptyMove(knownMove) && h.OpponentMove == knownMove {
			matched = h
			continue
		}
		h.CancelFlag.Store(true)
		toCancel = append(toCancel, h)
	}

	if matched == nil && !isEmptyMove(knownMove) {
		c.spawnCommitted(knownMove, workingTT)
	}

	for _, h := range toCancel {
		h.join() // a losing branch's resulting table is simply discarded
		c.logger.Log(pondLogLine("PONDER-CANCEL", h.Index))
	}
}

// spawnCommitted handles the miss case: the opponent's move was never among
// the spawned candidates, so start a fresh search rooted at it with the
// shorter response deadline.
func (c *Controller) spawnCommitted(knownMove board.Move, workingTT *ttSnapshot) *SearchHandle {
	next := c.root
	next.MakeMove(knownMove)

	cancel := &atomic.Bool{}
	handle := &SearchHandle{
		OpponentMove: knownMove,
		CancelFlag:   cancel,
		Index:        c.nextIndex,
		resultCh:     make(chan SearchResult, 1),
	}
	c.nextIndex++
	c.handles = append(c.handles, handle)

	spec := SearchSpec{
		Root:          next,
		OpponentMove:  knownMove,
		DepthSchedule: c.cfg.SearchDepths,
		TTable:        workingTT.Prune(next),
		Deadline:      time.Now().Add(c.cfg.MaxResponseDuration),
		CancelFlag:    cancel,
	}
	c.logger.Log(pondLogLine("PONDER-SPAWN", handle.Index))
	go runWorker(handle, spec, c.pieceMoves, c.ctx)
	return handle
}

func pondLogLine(tag string, n int) engine.LogInfo {
	return engine.LogInfo{
		Timestamp: time.Now(),
		Source:    "Search",
		Move:      tag,
		Score:     "",
		Depth:     n,
	}
}
