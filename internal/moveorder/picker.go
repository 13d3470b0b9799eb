// Package moveorder picks the order in which the search core tries moves at
// a node: the TT move first, then captures by MVV-LVA plus capture history,
// then killers, then quiet moves by history score. Grounded on
// other_examples/romanziske-golang-chess-ai__moveorder.go (the MVV-LVA
// table and history lookup shape) and
// other_examples/Oliverans-GooseEngine__killer.go (2-slot killer bonus).
package moveorder

import "zugzwang/internal/chessboard"

// HistorySource is the subset of package search's History tables the picker
// needs. Declaring it here (instead of importing package search) keeps
// search -> moveorder as the only edge; search.History satisfies this
// interface structurally.
type HistorySource interface {
	QuietScore(side chessboard.Side, pt chessboard.PieceType, to int) int16
	CaptureScore(side chessboard.Side, pt chessboard.PieceType, to int) int16
}

// pieceValue mirrors chessboard's material table; duplicated here (rather
// than imported) because it feeds a pure ordering heuristic, not evaluation.
var pieceValue = [7]int{
	chessboard.NoPieceType: 0,
	chessboard.Pawn:        100,
	chessboard.Knight:      320,
	chessboard.Bishop:      330,
	chessboard.Rook:        500,
	chessboard.Queen:       900,
	chessboard.King:        20000,
}

const (
	ttMoveScore    = 1 << 20
	captureBase    = 1 << 16
	killer0Score   = 1 << 15
	killer1Score   = 1 << 14
)

type scoredMove struct {
	move  chessboard.Move
	score int
}

// Picker enumerates a position's legal moves in search-friendly order. It
// is constructed fresh per node (the position's legal-move list is small
// enough that re-generating and re-scoring per node is cheap, the same
// tradeoff dragontoothmg/GooseEngine-style engines make).
type Picker struct {
	moves []scoredMove
	next  int
}

// New builds a picker over every legal move at pos, scored by ttMove
// preference, MVV-LVA + capture history for captures, and killer slots +
// quiet history for quiet moves. When quiescence is true and the side to
// move is not in check, only captures and promotions are yielded (check
// evasions are, by construction, every legal move, so inCheck bypasses the
// filter entirely).
func New(pos *chessboard.Position, history HistorySource, ttMove chessboard.Move, killers [2]chessboard.Move, inCheck, quiescence bool) *Picker {
	legal := pos.GenerateLegalMoves()
	p := &Picker{moves: make([]scoredMove, 0, len(legal))}
	us := pos.SideToMove

	for _, m := range legal {
		isCapture := pos.IsCaptureOrPromotion(m)
		if quiescence && !inCheck && !isCapture {
			continue
		}

		var score int
		switch {
		case !ttMove.IsNone() && m == ttMove:
			score = ttMoveScore
		case isCapture:
			attacker := pos.Board.PieceAt(m.From()).Type()
			victim := capturedType(pos, m)
			score = captureBase + 10*pieceValue[victim] - pieceValue[attacker]
			score += int(history.CaptureScore(us, attacker, m.To()))
		case m == killers[0]:
			score = killer0Score
		case m == killers[1]:
			score = killer1Score
		default:
			attacker := pos.Board.PieceAt(m.From()).Type()
			score = int(history.QuietScore(us, attacker, m.To()))
		}
		p.moves = append(p.moves, scoredMove{move: m, score: score})
	}

	// Insertion sort: move lists at a node rarely exceed a few dozen
	// entries, and a stable descending sort keeps picker output
	// deterministic for equally-scored moves (required for the
	// determinism property the search core relies on).
	for i := 1; i < len(p.moves); i++ {
		for j := i; j > 0 && p.moves[j-1].score < p.moves[j].score; j-- {
			p.moves[j-1], p.moves[j] = p.moves[j], p.moves[j-1]
		}
	}
	return p
}

// capturedType reports the type of piece a move captures, accounting for
// en passant where the captured pawn doesn't sit on the destination square.
func capturedType(pos *chessboard.Position, m chessboard.Move) chessboard.PieceType {
	if m.Flag() == chessboard.FlagEnPassant {
		return chessboard.Pawn
	}
	return pos.Board.PieceAt(m.To()).Type()
}

// Next yields the next move in ranked order, or (_, false) once exhausted.
func (p *Picker) Next() (chessboard.Move, bool) {
	if p.next >= len(p.moves) {
		return chessboard.NoMove, false
	}
	m := p.moves[p.next].move
	p.next++
	return m, true
}
