package search

import (
	"sync/atomic"

	"zugzwang/internal/chessboard"
	"zugzwang/internal/moveorder"
)

// Searcher owns every piece of search-scoped state: the transposition
// table, history tables, the per-ply state stack, and (borrowed, not
// owned) the position being searched and the cancellation flag the
// coordinator writes. It is allocated once and reused across searches.
type Searcher struct {
	pos     *chessboard.Position
	tt      *TranspositionTable
	history *History
	stack   *stateStack
	stopped *atomic.Bool

	// AspirationInitDelta overrides defaultAspirationInitDelta when non-zero.
	AspirationInitDelta Score

	nodes  atomic.Uint64 // read cross-goroutine by the coordinator's ticker
	ttHits uint64
	ttCuts uint64
}

// NewSearcher wires a transposition table and cancellation flag the
// coordinator owns; history and the state stack are allocated here and
// live for the Searcher's lifetime.
func NewSearcher(tt *TranspositionTable, stopped *atomic.Bool) *Searcher {
	return &Searcher{
		tt:      tt,
		history: &History{},
		stack:   newStateStack(),
		stopped: stopped,
	}
}

// checkLimit reads the cancellation flag and the TimeControl deadline; it
// runs at every negamax/quiescence node entry and after every root search in
// the driver. Apart from the node counter the coordinator's ticker reads,
// the flag is the only state shared across goroutines during a search.
func (s *Searcher) checkLimit(tc *TimeControl) bool {
	if s.stopped.Load() {
		return false
	}
	return tc.CheckLimit()
}

// rootResult is everything SearchRoot needs to report for one completed
// (or aborted) depth.
type rootResult struct {
	score Score
	pv    []chessboard.Move
	ok    bool
}

// SearchRoot runs a single fixed-depth search from alpha to beta over pos
// (depth always starts at 0 here; depthEnd is the target ply). Node/TT-hit/
// TT-cut stats are reset at the start of every call.
func (s *Searcher) SearchRoot(pos *chessboard.Position, tc *TimeControl, alpha, beta Score, depthEnd int) rootResult {
	s.pos = pos
	s.nodes.Store(0)
	s.ttHits, s.ttCuts = 0, 0
	s.stack.reset()

	score := s.negamax(tc, alpha, beta, 0, depthEnd)
	if score.IsNone() {
		return rootResult{ok: false}
	}
	pv := append([]chessboard.Move(nil), s.stack.frames[0].PV...)
	return rootResult{score: score, pv: pv, ok: true}
}

// negamax is the interior-node search: TT probe, move enumeration via the
// move picker, PV/CUT/ALL bookkeeping, terminal leaf evaluation, TT store,
// and killer/history updates on a cutoff.
func (s *Searcher) negamax(tc *TimeControl, alpha, beta Score, depth, depthEnd int) Score {
	if !s.checkLimit(tc) {
		return ScoreNone
	}
	if depth >= depthEnd {
		return s.quiescence(tc, alpha, beta, depth)
	}

	s.nodes.Add(1)

	key := s.pos.Key()
	entry, ttHit := s.tt.Get(key)
	if ttHit {
		s.ttHits++
	}

	depthToGo := int8(depthEnd - depth)
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
	var searchedQuiets, searchedCaptures []chessboard.Move

	func() {
		if ttHit && depthToGo <= entry.Depth {
			if entry.Score >= beta && (entry.Type == NodeCut || entry.Type == NodePV) {
				score = entry.Score
				nodeType = NodeCut
				bestMove = entry.Move
				s.ttCuts++
				return
			}
			if entry.Score <= alpha && entry.Type == NodeAll {
				score = entry.Score
				nodeType = NodeAll
				s.ttCuts++
				return
			}
		}
		if ttHit {
			eval = entry.Eval
		}
		if eval.IsNone() {
			eval = s.pos.Evaluate()
		}

		picker := moveorder.New(s.pos, s.history, ttMove, s.stack.current().Killers, inCheck, false)
		for {
			move, more := picker.Next()
			if !more {
				break
			}
			moveCount++

			isCapture := s.pos.IsCaptureOrPromotion(move)
			if isCapture {
				searchedCaptures = append(searchedCaptures, move)
			} else {
				searchedQuiets = append(searchedQuiets, move)
			}

			s.pos.MakeMove(move)
			s.stack.push()
			raw := s.negamax(tc, -beta, -alpha, depth+1, depthEnd)
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
				bestMove = move
				s.stack.updatePV(move, s.stack.frames[s.stack.ply+1].PV)
			}
		}

		if moveCount == 0 {
			leaf := s.pos.EvaluateLeaf(depth)
			if leaf > score {
				score = leaf
			}
		}
	}()

	if interrupted {
		return ScoreNone
	}

	if !(-Inf < score && score < Inf) {
		panic("search: out-of-range score about to be stored in the transposition table")
	}
	s.tt.Put(key, TTEntry{
		Depth: depthToGo,
		Score: score,
		Eval:  eval,
		Move:  bestMove,
		Type:  nodeType,
	})

	if nodeType == NodeCut {
		s.stack.updateKiller(bestMove)
		s.history.update(s.pos, bestMove, searchedQuiets, searchedCaptures, int(depthToGo))
	}

	return score
}
