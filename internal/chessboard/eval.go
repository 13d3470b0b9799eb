package chessboard

import "zugzwang/internal/search/searchscore"

// pieceValue holds the classic centipawn material values, indexed by
// PieceType. King carries no material value: mate is scored separately
// through EvaluateLeaf.
var pieceValue = [7]int{
	NoPieceType: 0,
	Pawn:        100,
	Knight:      320,
	Bishop:      330,
	Rook:        500,
	Queen:       900,
	King:        0,
}

// pst holds White-relative piece-square bonuses, rank 1 first (index 0..63
// in SquareOf order). Black's bonus for a piece on (file, rank) is read from
// the mirrored rank, the standard way a single table serves both sides.
var pst = [7][64]int{
	Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

// Evaluate is the static evaluator Position.Evaluate delegates to: material
// plus piece-square bonuses, summed from White's perspective and then
// flipped to the side to move's perspective, the same shape xionghan's
// engine.evaluateMaterialPositional uses (material + positional bonus per
// square, signed by side).
func Evaluate(pos *Position) searchscore.Score {
	score := 0
	for sq := 0; sq < NumSquares; sq++ {
		p := pos.Board.Squares[sq]
		if p.IsNone() {
			continue
		}
		pt := p.Type()
		val := pieceValue[pt]
		if p.Side() == White {
			val += pst[pt][sq]
			score += val
		} else {
			val += pst[pt][mirrorRank(sq)]
			score -= val
		}
	}
	if pos.SideToMove == Black {
		score = -score
	}
	return searchscore.Score(score)
}

// mirrorRank maps a square to the pst row Black should read: the tables
// above are written rank-1-first and are already White-relative, so Black
// reads the same file on the opposite rank.
func mirrorRank(sq int) int {
	file, rank := FileOf(sq), RankOf(sq)
	return SquareOf(file, 7-rank)
}
