package search

import "zugzwang/internal/chessboard"

// historyMaxScore clamps every history table entry to a ±2000 bound.
const historyMaxScore Score = 2000

// History holds the butterfly-style quiet and capture score tables,
// indexed by (side, piece type, destination square). Both tables are
// fixed arrays rather than maps, favoring dense index-able state over a
// hash map in a search hot path.
type History struct {
	quiet   [2][7][chessboard.NumSquares]int16
	capture [2][7][chessboard.NumSquares]int16
}

// QuietScore and CaptureScore satisfy moveorder.HistorySource without this
// package importing moveorder.
func (h *History) QuietScore(side chessboard.Side, pt chessboard.PieceType, to int) int16 {
	return h.quiet[side][pt][to]
}

func (h *History) CaptureScore(side chessboard.Side, pt chessboard.PieceType, to int) int16 {
	return h.capture[side][pt][to]
}

// Clear zeroes both tables. The coordinator never calls it, so history
// carries over from one search to the next.
func (h *History) Clear() {
	h.quiet = [2][7][chessboard.NumSquares]int16{}
	h.capture = [2][7][chessboard.NumSquares]int16{}
}

func clampHistory(v int32) int16 {
	if v > int32(historyMaxScore) {
		v = int32(historyMaxScore)
	}
	if v < -int32(historyMaxScore) {
		v = -int32(historyMaxScore)
	}
	return int16(v)
}

func (h *History) bump(side chessboard.Side, pt chessboard.PieceType, to int, isCapture bool, delta int32) {
	if isCapture {
		h.capture[side][pt][to] = clampHistory(int32(h.capture[side][pt][to]) + delta)
	} else {
		h.quiet[side][pt][to] = clampHistory(int32(h.quiet[side][pt][to]) + delta)
	}
}

// update applies the rule on a beta cutoff at an interior node: the
// winning move's own table gets +depth², every quiet move tried before
// it (if the winner itself was quiet) gets -depth², and every capture tried
// before it gets -depth² regardless of what the winner was.
func (h *History) update(pos *chessboard.Position, best chessboard.Move, quiets, captures []chessboard.Move, depth int) {
	us := pos.SideToMove
	bonus := int32(depth * depth)

	bestIsCapture := pos.IsCaptureOrPromotion(best)
	bestPT := pos.Board.PieceAt(best.From()).Type()
	h.bump(us, bestPT, best.To(), bestIsCapture, bonus)

	if !bestIsCapture {
		for _, m := range quiets {
			if m == best {
				continue
			}
			h.bump(us, pos.Board.PieceAt(m.From()).Type(), m.To(), false, -bonus)
		}
	}
	for _, m := range captures {
		if m == best {
			continue
		}
		h.bump(us, pos.Board.PieceAt(m.From()).Type(), m.To(), true, -bonus)
	}
}
