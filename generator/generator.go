// Package generator precomputes per-square move tables for use alongside
// board's own direct move generation. The sliding-piece rays stop at the
// edge of the board rather than at the first occupied square, since
// occupancy isn't known until a position is given; board.GenerateMoves
// walks these rays for every non-pawn piece and stops each one at the
// first occupied square.
package generator

import "chessponder/board"

var knightSteps = [8][2]int{
	{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
	{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
}

var kingSteps = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

var rookDirections = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
var bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// NewGenerator builds the PieceMoves table for every piece type.
func NewGenerator() board.PieceMoves {
	pm := make(board.PieceMoves)
	pm[board.Knight] = steppingMoves(knightSteps)
	pm[board.King] = steppingMoves(kingSteps)
	pm[board.Rook] = slidingMoves(rookDirections)
	pm[board.Bishop] = slidingMoves(bishopDirections)
	pm[board.Queen] = combine(pm[board.Rook], pm[board.Bishop])
	return pm
}

func steppingMoves(steps [8][2]int) board.SquareMoves {
	sm := make(board.SquareMoves)
	for sq := 0; sq < 64; sq++ {
		file, rank := sq&7, sq>>3
		var targets []board.Bitboard
		for _, s := range steps {
			nf, nr := file+s[0], rank+s[1]
			if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				targets = append(targets, board.IndexToBitBoard(nr*8+nf))
			}
		}
		if len(targets) > 0 {
			sm[board.IndexToBitBoard(sq)] = [][]board.Bitboard{targets}
		}
	}
	return sm
}

func slidingMoves(directions [4][2]int) board.SquareMoves {
	sm := make(board.SquareMoves)
	for sq := 0; sq < 64; sq++ {
		file, rank := sq&7, sq>>3
		var rays [][]board.Bitboard
		for _, d := range directions {
			var ray []board.Bitboard
			nf, nr := file+d[0], rank+d[1]
			for nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				ray = append(ray, board.IndexToBitBoard(nr*8+nf))
				nf += d[0]
				nr += d[1]
			}
			if len(ray) > 0 {
				rays = append(rays, ray)
			}
		}
		if len(rays) > 0 {
			sm[board.IndexToBitBoard(sq)] = rays
		}
	}
	return sm
}

// GenerateRookMovesForTesting exposes the unblocked rook rays so the magic
// package can check its precomputed tables against them.
func GenerateRookMovesForTesting() board.SquareMoves {
	return slidingMoves(rookDirections)
}

// GenerateBishopMovesForTesting exposes the unblocked bishop rays so the
// magic package can check its precomputed tables against them.
func GenerateBishopMovesForTesting() board.SquareMoves {
	return slidingMoves(bishopDirections)
}

func combine(a, b board.SquareMoves) board.SquareMoves {
	sm := make(board.SquareMoves, len(a))
	for sq, rays := range a {
		sm[sq] = append(sm[sq], rays...)
	}
	for sq, rays := range b {
		sm[sq] = append(sm[sq], rays...)
	}
	return sm
}
