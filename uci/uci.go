// Package uci implements a Universal Chess Interface front end: a line
// protocol read from stdin, one command per line, with responses written to
// stdout. It drives an engine.Session for ordinary searches and a
// ponder.Controller for "go ponder"/"ponderhit" handling.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"chessponder/board"
	"chessponder/engine"
	"chessponder/generator"
	"chessponder/ponder"
)

const engineName = "MyChessEngine"
const engineAuthor = "MyName"

// engineState holds everything that persists across UCI commands for the
// lifetime of the process: the current position, the search session (and
// its transposition table), and the pondering controller. The GUI is
// expected to re-send the full position (including the engine's own last
// move) before every "go", same as any other UCI engine; this package never
// mutates pos on its own account.
type engineState struct {
	pos        board.Position
	pieceMoves board.PieceMoves
	session    *engine.Session
	logger     *engine.Logger

	ponderCfg  ponder.Config
	ponderCtrl *ponder.Controller
	pondering  bool

	searchCancel *atomic.Bool
	searchDone   chan struct{}
}

// Start runs the UCI command loop until stdin closes or "quit" is received.
func Start() {
	logger, err := engine.NewLogger("uci.log")
	if err != nil {
		logger = nil
	} else {
		defer logger.Close()
	}

	s := &engineState{
		pos:        board.CreatePositionFormFEN(board.InitialPosition),
		pieceMoves: generator.NewGenerator(),
		session:    engine.NewSession(engine.DefaultHashMB),
		logger:     logger,
		ponderCfg:  ponder.DefaultConfig(),
	}
	s.session.SetDebugLogger(logger)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "uci":
			fmt.Printf("id name %s\n", engineName)
			fmt.Printf("id author %s\n", engineAuthor)
			fmt.Println("option name Hash type spin default 64 min 1 max 4096")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			s.reset()
		case "position":
			s.handlePosition(fields[1:])
		case "go":
			s.handleGo(fields[1:])
		case "ponderhit":
			s.handlePonderhit()
		case "stop":
			s.handleStop()
		case "quit":
			s.handleStop()
			return
		}
	}
}

func (s *engineState) reset() {
	s.handleStop()
	s.session = engine.NewSession(engine.DefaultHashMB)
	s.session.SetDebugLogger(s.logger)
	s.ponderCtrl = nil
}

// handlePosition applies "position [startpos|fen <fen>] [moves ...]".
func (s *engineState) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	i := 0
	switch args[0] {
	case "startpos":
		s.pos = board.CreatePositionFormFEN(board.InitialPosition)
		i = 1
	case "fen":
		end := 1
		for end < len(args) && args[end] != "moves" {
			end++
		}
		s.pos = board.CreatePositionFormFEN(strings.Join(args[1:end], " "))
		i = end
	}

	if i < len(args) && args[i] == "moves" {
		for _, uciMove := range args[i+1:] {
			legal := s.pos.GenerateLegalMoves(s.pieceMoves)
			move, ok := findUCIMove(uciMove, legal)
			if !ok {
				break
			}
			s.pos.MakeMove(move)
		}
	}

	if s.ponderCtrl != nil {
		s.ponderCtrl.Reset(s.pos, s.pos.WhiteMove)
	}
}

func findUCIMove(uciMove string, legal []board.Move) (board.Move, bool) {
	uciMove = strings.ToLower(uciMove)
	for _, m := range legal {
		if m.ToUCI() == uciMove {
			return m, true
		}
	}
	return board.Move{}, false
}

// handleGo starts a search. "go ponder" starts the speculative controller
// against the current position instead of searching it directly; every
// other form (movetime, depth, wtime/btime, or none of those) runs a normal
// deadline-bound search in the background so "stop" can interrupt it.
func (s *engineState) handleGo(args []string) {
	opts := parseGoOptions(args)

	if opts.ponder {
		s.startPondering()
		return
	}

	s.startSearch(s.deadlineFor(opts))
}

func (s *engineState) startPondering() {
	if s.ponderCtrl == nil {
		s.ponderCtrl = ponder.NewController(s.ponderCfg, s.pos, s.pos.WhiteMove)
		s.ponderCtrl.SetLogger(s.logger)
	}
	if err := s.ponderCtrl.StartPrecomputation(); err == nil {
		s.pondering = true
	}
}

// handlePonderhit means the opponent played the move the engine was told to
// ponder on. The matching (or, on a miss, freshly committed) search result
// becomes the move reported to the GUI.
func (s *engineState) handlePonderhit() {
	if !s.pondering || s.ponderCtrl == nil {
		return
	}
	s.pondering = false

	loc := s.ponderCtrl.StopPrecomputation(s.predictedOpponentMove())
	if !loc.Found() {
		s.startSearch(s.deadlineFor(goOptions{}))
		return
	}
	fmt.Printf("bestmove %s\n", bestMoveUCI(loc.Result()))
}

// predictedOpponentMove stands in for the real move a full GUI integration
// would thread through from the "position ... moves ..." update that always
// precedes "ponderhit": the first legal reply in the root the controller is
// pondering from. A caller wiring this package into an actual GUI session
// should pass the true move in instead.
func (s *engineState) predictedOpponentMove() board.Move {
	legal := s.pos.GenerateLegalMoves(s.pieceMoves)
	if len(legal) == 0 {
		return board.Move{}
	}
	return legal[0]
}

func bestMoveUCI(result ponder.SearchResult) string {
	move, ok := result.BestMove()
	if !ok {
		return "0000"
	}
	return move.ToUCI()
}

func (s *engineState) handleStop() {
	if s.pondering && s.ponderCtrl != nil {
		s.ponderCtrl.StopPrecomputation(board.Move{})
		s.pondering = false
	}
	if s.searchCancel != nil {
		s.searchCancel.Store(true)
	}
	if s.searchDone != nil {
		<-s.searchDone
		s.searchDone = nil
		s.searchCancel = nil
	}
}

// startSearch runs an iterative-deepening search to deadline in the
// background and prints bestmove once it completes, whether that is because
// the schedule ran out, the deadline passed, or handleStop cancelled it.
func (s *engineState) startSearch(deadline time.Time) {
	cancel := &atomic.Bool{}
	done := make(chan struct{})
	s.searchCancel = cancel
	s.searchDone = done

	pos := s.pos
	pieceMoves := s.pieceMoves
	session := s.session
	depths := defaultSearchDepths()

	go func() {
		defer close(done)
		out := session.IterativeDeepening(pos, pieceMoves, depths, deadline, cancel, false)
		fmt.Printf("info depth %d score cp %d nodes %d time %d\n", out.Depth, out.Score, out.Nodes, out.Time.Milliseconds())
		fmt.Printf("bestmove %s\n", out.Move.ToUCI())
	}()
}

func defaultSearchDepths() []int {
	depths := make([]int, engine.DefaultSearchDepth)
	for i := range depths {
		depths[i] = i + 1
	}
	return depths
}

type goOptions struct {
	ponder    bool
	infinite  bool
	movetime  time.Duration
	wtime     int
	btime     int
	winc      int
	binc      int
	movestogo int
	hasClock  bool
}

func parseGoOptions(args []string) goOptions {
	var opts goOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			opts.ponder = true
		case "infinite":
			opts.infinite = true
		case "movetime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				opts.movetime = time.Duration(ms) * time.Millisecond
			}
		case "wtime":
			i++
			if i < len(args) {
				opts.wtime, _ = strconv.Atoi(args[i])
				opts.hasClock = true
			}
		case "btime":
			i++
			if i < len(args) {
				opts.btime, _ = strconv.Atoi(args[i])
				opts.hasClock = true
			}
		case "winc":
			i++
			if i < len(args) {
				opts.winc, _ = strconv.Atoi(args[i])
			}
		case "binc":
			i++
			if i < len(args) {
				opts.binc, _ = strconv.Atoi(args[i])
			}
		case "movestogo":
			i++
			if i < len(args) {
				opts.movestogo, _ = strconv.Atoi(args[i])
			}
		}
	}
	return opts
}

func (s *engineState) deadlineFor(opts goOptions) time.Time {
	if opts.infinite {
		return time.Time{}
	}
	if opts.movetime > 0 {
		return time.Now().Add(opts.movetime)
	}
	if opts.hasClock {
		budget := engine.AllocateTime(opts.wtime, opts.btime, opts.winc, opts.binc, s.pos.WhiteMove, opts.movestogo)
		return time.Now().Add(budget)
	}
	return time.Now().Add(5 * time.Second)
}
