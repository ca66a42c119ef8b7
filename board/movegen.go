package board

import "strings"

// SquareMoves maps a from-square (as a single-bit Bitboard) to the list of
// rays reachable from it, one ray per direction. Non-sliding pieces (knight,
// king) store all of their targets together in a single ray.
type SquareMoves map[Bitboard][][]Bitboard

// PieceMoves holds the SquareMoves table for each piece type, keyed by the
// piece whose moves it describes. GenerateMoves walks these rays directly
// for knights, bishops, rooks, queens and kings; pawns and castling are
// worked out from occupancy since they don't fit the ray shape.
type PieceMoves map[Piece]SquareMoves

// GetPiece returns a pointer to the bitboard holding all pieces of type p,
// regardless of color.
func (pos *Position) GetPiece(p Piece) *Bitboard {
	switch p {
	case Pawn:
		return &pos.Pawns
	case Knight:
		return &pos.Knights
	case Bishop:
		return &pos.Bishops
	case Rook:
		return &pos.Rooks
	case Queen:
		return &pos.Queens
	case King:
		return &pos.Kings
	default:
		return nil
	}
}

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirections = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// attacksFrom returns the set of squares attacked by a piece of type p
// standing on sq, given the total occupancy occ. The result does not depend
// on the piece's color. Pawns are handled separately since their attack set
// depends on color but not on occupancy.
func attacksFrom(p Piece, sq int, occ Bitboard) Bitboard {
	file := sq & 7
	rank := sq >> 3
	var attacks Bitboard

	switch p {
	case Knight:
		for _, off := range knightOffsets {
			nf, nr := file+off[0], rank+off[1]
			if onBoard(nf, nr) {
				attacks.SetBit(squareIndex(nf, nr))
			}
		}
	case King:
		for _, off := range kingOffsets {
			nf, nr := file+off[0], rank+off[1]
			if onBoard(nf, nr) {
				attacks.SetBit(squareIndex(nf, nr))
			}
		}
	case Bishop, Rook, Queen:
		var dirs [][2]int
		if p == Bishop || p == Queen {
			dirs = append(dirs, bishopDirections[:]...)
		}
		if p == Rook || p == Queen {
			dirs = append(dirs, rookDirections[:]...)
		}
		for _, d := range dirs {
			nf, nr := file+d[0], rank+d[1]
			for onBoard(nf, nr) {
				idx := squareIndex(nf, nr)
				attacks.SetBit(idx)
				if occ.IsBitSet(idx) {
					break
				}
				nf += d[0]
				nr += d[1]
			}
		}
	}
	return attacks
}

func pawnAttacks(sq int, white bool) Bitboard {
	file := sq & 7
	rank := sq >> 3
	var attacks Bitboard
	dr := 1
	if !white {
		dr = -1
	}
	for _, df := range []int{-1, 1} {
		nf, nr := file+df, rank+dr
		if onBoard(nf, nr) {
			attacks.SetBit(squareIndex(nf, nr))
		}
	}
	return attacks
}

// isSquareAttacked reports whether sq is attacked by any piece belonging to
// the side whose WhiteMove-relative color is byWhite.
func (pos *Position) isSquareAttacked(sq int, byWhite bool) bool {
	occ := pos.White | pos.Black
	var attackers Bitboard
	if byWhite {
		attackers = pos.White
	} else {
		attackers = pos.Black
	}

	for _, p := range []Piece{Knight, Bishop, Rook, Queen, King} {
		bb := *pos.GetPiece(p) & attackers
		for bb != 0 {
			from := firstSquare(bb)
			bb &= bb - 1
			att := attacksFrom(p, from, occ)
			if att.IsBitSet(sq) {
				return true
			}
		}
	}

	pawns := pos.Pawns & attackers
	for pawns != 0 {
		from := firstSquare(pawns)
		pawns &= pawns - 1
		att := pawnAttacks(from, byWhite)
		if att.IsBitSet(sq) {
			return true
		}
	}

	return false
}

// firstSquare returns the index of the lowest set bit.
func firstSquare(b Bitboard) int {
	for i := 0; i < 64; i++ {
		if b&(1<<i) != 0 {
			return i
		}
	}
	return -1
}

// IsInCheck reports whether the side to move's king is attacked.
func (pos *Position) IsInCheck() bool {
	var king Bitboard
	if pos.WhiteMove {
		king = pos.Kings & pos.White
	} else {
		king = pos.Kings & pos.Black
	}
	if king == 0 {
		return false
	}
	sq := firstSquare(king)
	return pos.isSquareAttacked(sq, !pos.WhiteMove)
}

// slides reports whether a piece type stops on the first occupied square
// along a ray, as opposed to jumping pieces whose targets are independent of
// one another even when listed in the same ray slice.
func slides(p Piece) bool {
	return p == Bishop || p == Rook || p == Queen
}

// GenerateMoves produces all pseudo-legal moves for the side to move: moves
// that follow piece movement rules but may leave the mover's own king in
// check. Knight, bishop, rook, queen and king moves are read off the
// caller-supplied table rather than recomputed, so pm must carry a ray per
// direction for every occupied square of those types; pawns and castling are
// derived directly from occupancy since neither depends on a precomputed
// table.
func (pos *Position) GenerateMoves(pm PieceMoves) []Move {
	var moves []Move

	occ := pos.White | pos.Black
	var own, enemy Bitboard
	if pos.WhiteMove {
		own, enemy = pos.White, pos.Black
	} else {
		own, enemy = pos.Black, pos.White
	}

	for _, p := range []Piece{Knight, Bishop, Rook, Queen, King} {
		bb := *pos.GetPiece(p) & own
		for bb != 0 {
			from := firstSquare(bb)
			bb &= bb - 1
			fromBB := IndexToBitBoard(from)

			for _, ray := range pm[p][fromBB] {
				for _, to := range ray {
					if own&to != 0 {
						if slides(p) {
							break
						}
						continue
					}

					moves = append(moves, Move{
						From:     fromBB,
						To:       to,
						Piece:    p,
						Captured: pos.pieceAt(to),
					})

					if slides(p) && enemy&to != 0 {
						break
					}
				}
			}
		}
	}

	moves = append(moves, pos.generatePawnMoves(occ, own, enemy)...)
	moves = append(moves, pos.generateCastlingMoves(occ)...)

	return moves
}

// pieceAt returns the piece type occupying sq (as a single-bit Bitboard),
// or Empty if the square is unoccupied.
func (pos *Position) pieceAt(sq Bitboard) Piece {
	switch {
	case pos.Pawns&sq != 0:
		return Pawn
	case pos.Knights&sq != 0:
		return Knight
	case pos.Bishops&sq != 0:
		return Bishop
	case pos.Rooks&sq != 0:
		return Rook
	case pos.Queens&sq != 0:
		return Queen
	case pos.Kings&sq != 0:
		return King
	default:
		return Empty
	}
}

func (pos *Position) generatePawnMoves(occ, own, enemy Bitboard) []Move {
	var moves []Move
	pawns := pos.Pawns & own

	white := pos.WhiteMove
	var pushDir, startRank, promoRank int
	if white {
		pushDir, startRank, promoRank = 8, 1, 7
	} else {
		pushDir, startRank, promoRank = -8, 6, 0
	}

	promoPieces := []Piece{Queen, Rook, Bishop, Knight}

	bb := pawns
	for bb != 0 {
		from := firstSquare(bb)
		bb &= bb - 1
		rank := from >> 3
		file := from & 7

		// Single push
		to := from + pushDir
		if to >= 0 && to < 64 && occ&IndexToBitBoard(to) == 0 {
			if to>>3 == promoRank {
				for _, pp := range promoPieces {
					moves = append(moves, Move{From: IndexToBitBoard(from), To: IndexToBitBoard(to), Piece: Pawn, Promotion: pp})
				}
			} else {
				moves = append(moves, Move{From: IndexToBitBoard(from), To: IndexToBitBoard(to), Piece: Pawn})
			}

			// Double push
			if rank == startRank {
				to2 := from + 2*pushDir
				if occ&IndexToBitBoard(to2) == 0 {
					moves = append(moves, Move{From: IndexToBitBoard(from), To: IndexToBitBoard(to2), Piece: Pawn})
				}
			}
		}

		// Captures (including en passant)
		for _, df := range []int{-1, 1} {
			nf := file + df
			nr := rank + pushDir/8
			if !onBoard(nf, nr) {
				continue
			}
			capSq := squareIndex(nf, nr)
			capBB := IndexToBitBoard(capSq)

			if enemy&capBB != 0 {
				captured := pos.pieceAt(capBB)
				if capSq>>3 == promoRank {
					for _, pp := range promoPieces {
						moves = append(moves, Move{From: IndexToBitBoard(from), To: capBB, Piece: Pawn, Captured: captured, Promotion: pp})
					}
				} else {
					moves = append(moves, Move{From: IndexToBitBoard(from), To: capBB, Piece: Pawn, Captured: captured})
				}
			} else if pos.EnPassant&capBB != 0 {
				moves = append(moves, Move{From: IndexToBitBoard(from), To: capBB, Piece: Pawn, Captured: Pawn, Flags: FlagEnPassant})
			}
		}
	}

	return moves
}

func (pos *Position) generateCastlingMoves(occ Bitboard) []Move {
	var moves []Move

	if pos.WhiteMove {
		if pos.CastleSide&CastleWhiteKingSide != 0 &&
			occ&(IndexToBitBoard(5)|IndexToBitBoard(6)) == 0 &&
			!pos.isSquareAttacked(4, false) && !pos.isSquareAttacked(5, false) && !pos.isSquareAttacked(6, false) {
			moves = append(moves, Move{From: IndexToBitBoard(4), To: IndexToBitBoard(6), Piece: King, Flags: FlagCastling})
		}
		if pos.CastleSide&CastleWhiteQueenSide != 0 &&
			occ&(IndexToBitBoard(1)|IndexToBitBoard(2)|IndexToBitBoard(3)) == 0 &&
			!pos.isSquareAttacked(4, false) && !pos.isSquareAttacked(3, false) && !pos.isSquareAttacked(2, false) {
			moves = append(moves, Move{From: IndexToBitBoard(4), To: IndexToBitBoard(2), Piece: King, Flags: FlagCastling})
		}
	} else {
		if pos.CastleSide&CastleBlackKingSide != 0 &&
			occ&(IndexToBitBoard(61)|IndexToBitBoard(62)) == 0 &&
			!pos.isSquareAttacked(60, true) && !pos.isSquareAttacked(61, true) && !pos.isSquareAttacked(62, true) {
			moves = append(moves, Move{From: IndexToBitBoard(60), To: IndexToBitBoard(62), Piece: King, Flags: FlagCastling})
		}
		if pos.CastleSide&CastleBlackQueenSide != 0 &&
			occ&(IndexToBitBoard(57)|IndexToBitBoard(58)|IndexToBitBoard(59)) == 0 &&
			!pos.isSquareAttacked(60, true) && !pos.isSquareAttacked(59, true) && !pos.isSquareAttacked(58, true) {
			moves = append(moves, Move{From: IndexToBitBoard(60), To: IndexToBitBoard(58), Piece: King, Flags: FlagCastling})
		}
	}

	return moves
}

// GenerateLegalMoves filters GenerateMoves down to moves that don't leave
// the mover's own king in check.
func (pos *Position) GenerateLegalMoves(pm PieceMoves) []Move {
	pseudo := pos.GenerateMoves(pm)
	legal := make([]Move, 0, len(pseudo))

	movingWhite := pos.WhiteMove
	for _, m := range pseudo {
		undo := pos.MakeMove(m)
		var king Bitboard
		if movingWhite {
			king = pos.Kings & pos.White
		} else {
			king = pos.Kings & pos.Black
		}
		inCheck := king != 0 && pos.isSquareAttacked(firstSquare(king), !movingWhite)
		pos.UnmakeMove(m, undo)
		if !inCheck {
			legal = append(legal, m)
		}
	}

	return legal
}

// AllLegalMoves returns the resulting positions after each legal move of
// piece type p, used by callers that want to inspect where a given piece
// type can land rather than the move list itself.
func (pos *Position) AllLegalMoves(pm PieceMoves, p Piece) []Position {
	var results []Position
	for _, m := range pos.GenerateLegalMoves(pm) {
		if m.Piece != p {
			continue
		}
		next := *pos
		next.MakeMove(m)
		results = append(results, next)
	}
	return results
}

// Pretty renders the position as an ASCII board for terminal display.
func (pos Position) Pretty() string {
	var sb strings.Builder
	sb.WriteString("+---+---+---+---+---+---+---+---+\n")
	for r := Rank8; r >= Rank1; r-- {
		for f := FileA; f <= FileH; f++ {
			sq := IndexToBitBoard(squareIndex(f, r))
			piece := pos.pieceAt(sq)
			ch := " "
			if piece != Empty {
				white := pos.White&sq != 0
				switch piece {
				case Pawn:
					ch = "p"
				case Knight:
					ch = "n"
				case Bishop:
					ch = "b"
				case Rook:
					ch = "r"
				case Queen:
					ch = "q"
				case King:
					ch = "k"
				}
				if white {
					ch = strings.ToUpper(ch)
				}
			}
			sb.WriteString("| " + ch + " ")
		}
		sb.WriteString("|\n+---+---+---+---+---+---+---+---+\n")
	}
	sb.WriteString("  a   b   c   d   e   f   g   h\n")
	return sb.String()
}
