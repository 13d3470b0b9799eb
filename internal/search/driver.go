package search

import (
	"fmt"
	"sync/atomic"

	"zugzwang/internal/chessboard"
)

// defaultAspirationInitDelta is the starting half-width of the aspiration
// window. Overridable via Searcher.AspirationInitDelta, one of the tuning
// knobs internal/engineconfig reads from viper.
const defaultAspirationInitDelta Score = 25

// depthResult is one completed (or, transiently, attempted) iterative
// deepening depth.
type depthResult struct {
	depth int
	score Score
	pv    []chessboard.Move
	stats Stats
}

// runIterativeDeepening runs an unconditional depth-1 search, then depths
// 2..depthEnd using a full window
// below depth 4 and an aspiration window above it, emitting one event per
// completed depth via emit and a final BEST event for the deepest completed
// result. It returns early (without completing depthEnd) the moment
// checkLimit reports the deadline or a Stop request; depth 1 is exempt from
// that check: it runs against a cancellation flag nothing sets and a time
// control with no deadline, so it always completes. A Stop issued meanwhile
// stays on the coordinator's flag and ends the search at depth 2.
func (s *Searcher) runIterativeDeepening(pos *chessboard.Position, tc *TimeControl, params GoParameters, emit func(Event)) {
	depthEnd := params.Depth

	emit(Event{Debug: fmt.Sprintf(
		"ply=%d side=%s eval=%d budget_ms=%d",
		pos.Ply(), pos.SideToMove, pos.Evaluate(), tc.Budget(),
	)})

	var neverStopped atomic.Bool
	var noDeadline TimeControl
	noDeadline.Initialize(GoParameters{}, pos.SideToMove, pos.Ply())
	stopped := s.stopped
	s.stopped = &neverStopped
	depth1 := s.SearchRoot(pos, &noDeadline, -Inf, Inf, 1)
	s.stopped = stopped
	last := depthResult{depth: 1, score: depth1.score, pv: depth1.pv, stats: s.statsSnapshot(tc)}
	emit(infoEvent(last))

	for depth := 2; depth <= depthEnd; depth++ {
		var res rootResult
		if depth < 4 {
			res = s.SearchRoot(pos, tc, -Inf, Inf, depth)
		} else {
			res = s.searchWithAspirationWindow(pos, tc, depth, last.score)
		}

		if !s.checkLimit(tc) {
			break
		}
		if !res.ok {
			break
		}

		last = depthResult{depth: depth, score: res.score, pv: res.pv, stats: s.statsSnapshot(tc)}
		emit(infoEvent(last))
	}

	emit(bestEvent(last))
}

// searchWithAspirationWindow searches a narrow window around the previous
// depth's score, widened geometrically on fail-low/fail-high until the
// score lands strictly inside the window.
func (s *Searcher) searchWithAspirationWindow(pos *chessboard.Position, tc *TimeControl, depth int, initTarget Score) rootResult {
	delta := s.AspirationInitDelta
	if delta == 0 {
		delta = defaultAspirationInitDelta
	}
	target := initTarget

	for {
		alpha := target - delta
		if alpha < -Inf {
			alpha = -Inf
		}
		beta := target + delta
		if beta > Inf {
			beta = Inf
		}

		res := s.SearchRoot(pos, tc, alpha, beta, depth)
		if !s.checkLimit(tc) {
			return rootResult{ok: false}
		}
		if !res.ok {
			return rootResult{ok: false}
		}

		if alpha < res.score && res.score < beta {
			return res
		}
		if res.score <= alpha {
			target -= delta
		}
		if res.score >= beta {
			target += delta
		}
		delta *= 2
	}
}

func (s *Searcher) statsSnapshot(tc *TimeControl) Stats {
	elapsed := tc.Elapsed()
	if elapsed <= 0 {
		elapsed = 1
	}
	nodes := s.nodes.Load()
	return Stats{
		Nodes:  nodes,
		TimeMs: elapsed,
		NPS:    int64(nodes) * 1000 / elapsed,
		TTHit:  s.ttHits,
		TTCut:  s.ttCuts,
	}
}

func infoEvent(r depthResult) Event {
	return Event{Type: EventInfo, Depth: r.depth, Score: r.score, PV: r.pv, Stats: r.stats}
}

func bestEvent(r depthResult) Event {
	return Event{Type: EventBest, Depth: r.depth, Score: r.score, PV: r.pv, Stats: r.stats}
}
