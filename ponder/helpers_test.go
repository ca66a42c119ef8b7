package ponder

import (
	"time"

	"chessponder/board"
	"chessponder/generator"
)

// kingEndgameFEN is black to move with exactly two legal replies: the lone
// king can step to g8 or g7, but not h7 (swept by the rook on h1). Small
// enough that a depth-1 schedule resolves in microseconds, and small enough
// that a test can precompute the exact candidate moves itself.
const kingEndgameFEN = "7k/8/8/8/8/8/8/K6R b - - 0 1"

func tinyConfig() Config {
	return Config{
		SearchDepths:         []int{1},
		OpponentSearchDepths: []int{1},
		MaxParallel:          2,
		MaxSearchDuration:    2 * time.Second,
		MaxResponseDuration:  2 * time.Second,
		EngineColor:          true,
		HashMB:               1,
	}
}

func legalRepliesAt(fen string) []board.Move {
	pos := board.CreatePositionFormFEN(fen)
	pm := generator.NewGenerator()
	return pos.GenerateLegalMoves(pm)
}
