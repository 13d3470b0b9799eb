package search

import (
	"zugzwang/internal/chessboard"
	"zugzwang/internal/moveorder"
)

// quiescence has the same shape as negamax, but capped by MaxPly, scored
// via stand-pat before searching forcing moves, and
// restricted to captures/promotions/check-evasions. All quiescence TT
// entries store depth_to_go = 0, so the score-cut test doesn't gate on
// depth adequacy the way the interior search does.
func (s *Searcher) quiescence(tc *TimeControl, alpha, beta Score, depth int) Score {
	if !s.checkLimit(tc) {
		return ScoreNone
	}
	s.nodes.Add(1)
	if depth >= MaxPly {
		return s.pos.Evaluate()
	}

	key := s.pos.Key()
	entry, ttHit := s.tt.Get(key)
	if ttHit {
		s.ttHits++
	}

	inCheck := s.pos.Checkers()
	var ttMove chessboard.Move = chessboard.NoMove
	if ttHit {
		ttMove = entry.Move
	}

	bestMove := chessboard.NoMove
	nodeType := NodeAll
	score := -Inf
	eval := ScoreNone
	interrupted := false
	moveCount := 0

	func() {
		if ttHit {
			if (entry.Type == NodeCut || entry.Type == NodePV) && entry.Score >= beta {
				score = entry.Score
				nodeType = NodeCut
				bestMove = entry.Move
				s.ttCuts++
				return
			}
			if entry.Type == NodeAll && entry.Score <= alpha {
				score = entry.Score
				nodeType = NodeAll
				s.ttCuts++
				return
			}
			eval = entry.Eval
		}
		if eval.IsNone() {
			eval = s.pos.Evaluate()
		}

		score = eval
		if score >= beta {
			nodeType = NodeCut
			return
		}
		if score > alpha {
			alpha = score
		}

		picker := moveorder.New(s.pos, s.history, ttMove, s.stack.current().Killers, inCheck, true)
		for {
			move, more := picker.Next()
			if !more {
				break
			}
			moveCount++

			s.pos.MakeMove(move)
			s.stack.push()
			raw := s.quiescence(tc, -beta, -alpha, depth+1)
			s.stack.pop()
			s.pos.UnmakeMove(move)

			if raw.IsNone() {
				interrupted = true
				return
			}
			child := -raw
			if child > score {
				score = child
			}

			if score >= beta {
				nodeType = NodeCut
				bestMove = move
				return
			}
			if score > alpha {
				nodeType = NodePV
				alpha = score
			}
		}

		if inCheck && moveCount == 0 {
			score = s.pos.EvaluateLeaf(depth)
		}
	}()

	if interrupted {
		return ScoreNone
	}

	if !(-Inf < score && score < Inf) {
		panic("search: out-of-range score about to be stored in the transposition table")
	}
	s.tt.Put(key, TTEntry{
		Depth: 0,
		Score: score,
		Eval:  eval,
		Move:  bestMove,
		Type:  nodeType,
	})

	return score
}
