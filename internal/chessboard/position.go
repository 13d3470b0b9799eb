package chessboard

import "zugzwang/internal/search/searchscore"

// undoState holds everything MakeMove can't cheaply recompute on unmake.
type undoState struct {
	move          Move
	captured      Piece
	captureSquare int
	castleRights  uint8
	epSquare      int8
	halfmove      int
	hash          uint64
	wasNull       bool
}

// Position is the external collaborator the search core depends on: it
// carries the board, side to move and game ply, and knows how to make and
// unmake moves and evaluate itself. Search-scoped state (TT, killers,
// history) lives in package search instead.
type Position struct {
	Board         Board
	SideToMove    Side
	CastleRights  uint8
	EPSquare      int8 // -1 when none
	HalfmoveClock int
	GamePly       int
	Hash          uint64

	undo []undoState
}

// NewInitialPosition returns the standard chess starting position.
func NewInitialPosition() *Position {
	pos, err := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		panic("chessboard: invalid built-in starting FEN: " + err.Error())
	}
	return pos
}

func (pos *Position) Key() uint64 { return pos.Hash }

// Checkers reports whether the side to move's king is currently attacked.
func (pos *Position) Checkers() bool {
	king := pos.Board.kingSquare(pos.SideToMove)
	if king < 0 {
		return false
	}
	return pos.Board.attacksSquare(king, pos.SideToMove.Other())
}

func (pos *Position) Ply() int { return pos.GamePly }

// IsCaptureOrPromotion classifies a pseudo-legal move for move-ordering and
// history bucketing purposes.
func (pos *Position) IsCaptureOrPromotion(m Move) bool {
	if m.Flag() == FlagEnPassant {
		return true
	}
	if !pos.Board.Squares[m.To()].IsNone() {
		return true
	}
	return m.Promotion() != NoPieceType
}

// MakeMove applies m to the position in place, pushing enough state onto
// the undo stack to reverse it with UnmakeMove.
func (pos *Position) MakeMove(m Move) {
	us := pos.SideToMove
	from, to := m.From(), m.To()
	moving := pos.Board.Squares[from]

	u := undoState{
		move:         m,
		captureSquare: to,
		castleRights: pos.CastleRights,
		epSquare:     pos.EPSquare,
		halfmove:     pos.HalfmoveClock,
		hash:         pos.Hash,
	}

	captured := pos.Board.Squares[to]
	if m.Flag() == FlagEnPassant {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		captured = pos.Board.Squares[capSq]
		u.captureSquare = capSq
		pos.Hash ^= pieceKey(captured, capSq)
		pos.Board.clear(capSq)
	} else if !captured.IsNone() {
		pos.Hash ^= pieceKey(captured, to)
	}
	u.captured = captured

	pos.Hash ^= pieceKey(moving, from)
	pos.Board.clear(from)

	placed := moving
	if promo := m.Promotion(); promo != NoPieceType {
		placed = MakePiece(us, promo)
	}
	pos.Hash ^= pieceKey(placed, to)
	pos.Board.put(to, placed)

	if m.Flag() == FlagCastleKingside || m.Flag() == FlagCastleQueenside {
		rank := 0
		if us == Black {
			rank = 7
		}
		var rookFrom, rookTo int
		if m.Flag() == FlagCastleKingside {
			rookFrom, rookTo = SquareOf(7, rank), SquareOf(5, rank)
		} else {
			rookFrom, rookTo = SquareOf(0, rank), SquareOf(3, rank)
		}
		rook := pos.Board.Squares[rookFrom]
		pos.Hash ^= pieceKey(rook, rookFrom)
		pos.Board.clear(rookFrom)
		pos.Hash ^= pieceKey(rook, rookTo)
		pos.Board.put(rookTo, rook)
	}

	pos.Hash ^= zobristCastle[pos.CastleRights]
	pos.CastleRights &^= castleRightsClearedBy(from) | castleRightsClearedBy(to)
	pos.Hash ^= zobristCastle[pos.CastleRights]

	if pos.EPSquare >= 0 {
		pos.Hash ^= zobristEPFile[FileOf(int(pos.EPSquare))]
	}
	pos.EPSquare = -1
	if m.Flag() == FlagDoublePush {
		epSq := (from + to) / 2
		pos.EPSquare = int8(epSq)
		pos.Hash ^= zobristEPFile[FileOf(epSq)]
	}

	if moving.Type() == Pawn || !captured.IsNone() {
		pos.HalfmoveClock = 0
	} else {
		pos.HalfmoveClock++
	}

	pos.Hash ^= zobristSideToMove
	pos.SideToMove = us.Other()
	pos.GamePly++

	pos.undo = append(pos.undo, u)
}

// UnmakeMove reverses the most recent MakeMove.
func (pos *Position) UnmakeMove(m Move) {
	n := len(pos.undo) - 1
	u := pos.undo[n]
	pos.undo = pos.undo[:n]

	pos.GamePly--
	pos.SideToMove = pos.SideToMove.Other()
	us := pos.SideToMove
	from, to := m.From(), m.To()

	if m.Flag() == FlagCastleKingside || m.Flag() == FlagCastleQueenside {
		rank := 0
		if us == Black {
			rank = 7
		}
		var rookFrom, rookTo int
		if m.Flag() == FlagCastleKingside {
			rookFrom, rookTo = SquareOf(7, rank), SquareOf(5, rank)
		} else {
			rookFrom, rookTo = SquareOf(0, rank), SquareOf(3, rank)
		}
		rook := pos.Board.Squares[rookTo]
		pos.Board.clear(rookTo)
		pos.Board.put(rookFrom, rook)
	}

	moving := pos.Board.Squares[to]
	if m.Promotion() != NoPieceType {
		moving = MakePiece(us, Pawn)
	}
	pos.Board.clear(to)
	pos.Board.put(from, moving)

	if m.Flag() == FlagEnPassant {
		pos.Board.put(u.captureSquare, u.captured)
	} else if !u.captured.IsNone() {
		pos.Board.put(to, u.captured)
	}

	pos.CastleRights = u.castleRights
	pos.EPSquare = u.epSquare
	pos.HalfmoveClock = u.halfmove
	pos.Hash = u.hash
}

// MakeNullMove flips the side to move and clears en-passant without
// moving a piece. The search core never calls it today (null-move
// pruning is out of scope), but it completes the position's mutation
// contract for a future caller.
func (pos *Position) MakeNullMove() {
	u := undoState{
		move:         NoMove,
		castleRights: pos.CastleRights,
		epSquare:     pos.EPSquare,
		halfmove:     pos.HalfmoveClock,
		hash:         pos.Hash,
		wasNull:      true,
	}
	if pos.EPSquare >= 0 {
		pos.Hash ^= zobristEPFile[FileOf(int(pos.EPSquare))]
	}
	pos.EPSquare = -1
	pos.Hash ^= zobristSideToMove
	pos.SideToMove = pos.SideToMove.Other()
	pos.GamePly++
	pos.undo = append(pos.undo, u)
}

// UnmakeNullMove reverses MakeNullMove.
func (pos *Position) UnmakeNullMove() {
	n := len(pos.undo) - 1
	u := pos.undo[n]
	pos.undo = pos.undo[:n]
	pos.GamePly--
	pos.SideToMove = pos.SideToMove.Other()
	pos.EPSquare = u.epSquare
	pos.Hash = u.hash
}

func castleRightsClearedBy(sq int) uint8 {
	switch sq {
	case SquareOf(4, 0):
		return WhiteOO | WhiteOOO
	case SquareOf(4, 7):
		return BlackOO | BlackOOO
	case SquareOf(7, 0):
		return WhiteOO
	case SquareOf(0, 0):
		return WhiteOOO
	case SquareOf(7, 7):
		return BlackOO
	case SquareOf(0, 7):
		return BlackOOO
	default:
		return 0
	}
}

// Evaluate returns the static evaluation of the position from the side to
// move's perspective, via the single evaluator in eval.go. The Score type
// is defined in internal/search/searchscore (package search re-exports it
// as search.Score) to avoid an import cycle with package search.
func (pos *Position) Evaluate() searchscore.Score {
	return Evaluate(pos)
}

// EvaluateLeaf scores a position with no legal moves: stalemate is a draw
// (0), checkmate is a mate score whose magnitude decreases with distance
// from the root so the search prefers the fastest mate.
func (pos *Position) EvaluateLeaf(depth int) searchscore.Score {
	if pos.Checkers() {
		return -(searchscore.Inf - searchscore.Score(depth))
	}
	return 0
}
