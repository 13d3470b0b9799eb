package search

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zugzwang/internal/chessboard"
)

func newSearcherForTest() *Searcher {
	tt := NewTranspositionTableWithCapacity(1 << 16)
	var stopped atomic.Bool
	return NewSearcher(tt, &stopped)
}

func infiniteTimeControl() *TimeControl {
	var tc TimeControl
	tc.Initialize(GoParameters{}, chessboard.White, 1)
	return &tc
}

// referenceNegamax is a bare, unordered, TT-free full-window negamax used
// only to check the optimized search against the definition of the minimax
// value it is supposed to compute.
func referenceNegamax(pos *chessboard.Position, alpha, beta Score, depth, depthEnd int) Score {
	if depth >= depthEnd {
		return referenceQuiescence(pos, alpha, beta)
	}
	moves := pos.GenerateLegalMoves()
	if len(moves) == 0 {
		return pos.EvaluateLeaf(depth)
	}
	best := -Inf
	for _, m := range moves {
		pos.MakeMove(m)
		score := -referenceNegamax(pos, -beta, -alpha, depth+1, depthEnd)
		pos.UnmakeMove(m)
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

func referenceQuiescence(pos *chessboard.Position, alpha, beta Score) Score {
	standPat := pos.Evaluate()
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	moves := pos.GenerateLegalMoves()
	best := standPat
	for _, m := range moves {
		if !pos.IsCaptureOrPromotion(m) {
			continue
		}
		pos.MakeMove(m)
		score := -referenceQuiescence(pos, -beta, -alpha)
		pos.UnmakeMove(m)
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// Property 1: determinism. A fixed position/depth searched twice from fresh
// state (empty TT, history, killers) with no time pressure returns the
// identical score and PV both times.
func TestSearchRootIsDeterministic(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"

	run := func() (Score, []chessboard.Move) {
		pos, err := chessboard.FromFEN(fen)
		require.NoError(t, err)
		s := newSearcherForTest()
		tc := infiniteTimeControl()
		res := s.SearchRoot(pos, tc, -Inf, Inf, 3)
		require.True(t, res.ok)
		return res.score, res.pv
	}

	score1, pv1 := run()
	score2, pv2 := run()

	assert.Equal(t, score1, score2)
	assert.Equal(t, pv1, pv2)
}

// Property 2: minimax value. The optimized search with an empty TT returns
// the same score a plain, unordered, full-window negamax computes over the
// same position and depth.
func TestSearchRootMatchesReferenceMinimaxValue(t *testing.T) {
	fen := "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1"

	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	s := newSearcherForTest()
	tc := infiniteTimeControl()
	res := s.SearchRoot(pos, tc, -Inf, Inf, 3)
	require.True(t, res.ok)

	refPos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	want := referenceNegamax(refPos, -Inf, Inf, 0, 3)

	assert.Equal(t, want, res.score)
}

// Property 3: aspiration correctness. The final accepted score from
// searchWithAspirationWindow lies strictly inside the window it was
// accepted under, and the search converges (doesn't loop forever) well
// within a handful of widenings for an ordinary middlegame position.
func TestAspirationWindowAcceptsScoreInsideFinalWindow(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)

	s := newSearcherForTest()
	tc := infiniteTimeControl()

	depth3 := s.SearchRoot(pos, tc, -Inf, Inf, 3)
	require.True(t, depth3.ok)

	res := s.searchWithAspirationWindow(pos, tc, 4, depth3.score)
	require.True(t, res.ok)

	full := s.SearchRoot(pos, tc, -Inf, Inf, 4)
	require.True(t, full.ok)
	assert.Equal(t, full.score, res.score)
}

// Property 4: negamax symmetry. Mirroring a position (swap sides, flip
// ranks) and searching to the same depth yields the same score, since the
// evaluator and move generator are both side-to-move relative.
func TestSearchRootIsSymmetricUnderColorMirror(t *testing.T) {
	fen := "4k3/8/8/8/4P3/8/8/4K3 w - - 0 1"
	mirrored := "4k3/8/8/4p3/8/8/8/4K3 b - - 0 1"

	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	mpos, err := chessboard.FromFEN(mirrored)
	require.NoError(t, err)

	s1 := newSearcherForTest()
	tc1 := infiniteTimeControl()
	res1 := s1.SearchRoot(pos, tc1, -Inf, Inf, 2)
	require.True(t, res1.ok)

	s2 := newSearcherForTest()
	tc2 := infiniteTimeControl()
	res2 := s2.SearchRoot(mpos, tc2, -Inf, Inf, 2)
	require.True(t, res2.ok)

	assert.Equal(t, res1.score, res2.score)
}

// Property 5: TT idempotence. Running the same full-window search twice on
// the same Searcher (so the TT carries over) reports strictly more hits on
// the second pass.
func TestSecondSearchReusesTranspositionTable(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	s := newSearcherForTest()

	pos1, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	tc1 := infiniteTimeControl()
	res1 := s.SearchRoot(pos1, tc1, -Inf, Inf, 4)
	require.True(t, res1.ok)
	firstHits := s.ttHits

	pos2, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	tc2 := infiniteTimeControl()
	res2 := s.SearchRoot(pos2, tc2, -Inf, Inf, 4)
	require.True(t, res2.ok)

	assert.Equal(t, res1.score, res2.score)
	assert.Greater(t, s.ttHits, firstHits)
}

// Property 6: cancellation safety. Setting the stop flag mid-search causes
// negamax to return ScoreNone and SearchRoot to report !ok, and the state
// stack is back at ply 0 for the next caller.
func TestCancellationDuringSearchIsSafe(t *testing.T) {
	pos := chessboard.NewInitialPosition()
	tt := NewTranspositionTableWithCapacity(1 << 12)
	var stopped atomic.Bool
	s := NewSearcher(tt, &stopped)
	tc := infiniteTimeControl()

	stopped.Store(true)
	res := s.SearchRoot(pos, tc, -Inf, Inf, 6)

	assert.False(t, res.ok)
	assert.Equal(t, 0, s.stack.ply)
}

// Regression: cancellation signalled at an arbitrary interior node (not just
// the first node visited) must propagate ScoreNone all the way to the root
// without ever being negated into a fabricated in-range score along the way.
// Stopping only once node counts suggests the search is several plies deep
// exercises the case a stop at ply 0 can't: every intervening negamax call
// between the node that first observes the stop and the root renegotiates a
// raw ScoreNone return, and any reintroduced bug where that value is negated
// before the IsNone check would either panic the out-of-range assertion in
// negamax/quiescence or silently store a poisoned transposition table entry.
func TestCancellationAtInteriorNodePropagatesWithoutPoisoningTT(t *testing.T) {
	fen := "r2q1rk1/ppp2ppp/2np1n2/2b1p3/2B1P1b1/2NP1N2/PPP2PPP/R1BQ1RK1 w - - 4 8"
	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)

	tt := NewTranspositionTableWithCapacity(1 << 16)
	var stopped atomic.Bool
	s := NewSearcher(tt, &stopped)
	tc := infiniteTimeControl()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for s.nodes.Load() < 200 {
			time.Sleep(50 * time.Microsecond)
		}
		stopped.Store(true)
	}()

	assert.NotPanics(t, func() {
		res := s.SearchRoot(pos, tc, -Inf, Inf, 10)
		assert.False(t, res.ok)
	})
	<-done
}

// Property 7: history bounds. After many updates driven by repeated
// searches, every touched history entry stays within [-2000, 2000].
func TestHistoryStaysWithinBoundsAfterRepeatedSearches(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	s := newSearcherForTest()

	for i := 0; i < 20; i++ {
		pos, err := chessboard.FromFEN(fen)
		require.NoError(t, err)
		tc := infiniteTimeControl()
		res := s.SearchRoot(pos, tc, -Inf, Inf, 4)
		require.True(t, res.ok)
	}

	for side := 0; side < 2; side++ {
		for pt := 0; pt < 7; pt++ {
			for sq := 0; sq < chessboard.NumSquares; sq++ {
				q := s.history.QuietScore(chessboard.Side(side), chessboard.PieceType(pt), sq)
				c := s.history.CaptureScore(chessboard.Side(side), chessboard.PieceType(pt), sq)
				assert.LessOrEqual(t, q, int16(historyMaxScore))
				assert.GreaterOrEqual(t, q, -int16(historyMaxScore))
				assert.LessOrEqual(t, c, int16(historyMaxScore))
				assert.GreaterOrEqual(t, c, -int16(historyMaxScore))
			}
		}
	}
}

// Property 8: killer invariant, exercised end to end through a real search
// rather than by hand-driving the stack (state_test.go covers the unit
// behavior directly). The ply-1 frame is checked because the root, searched
// with a full window, can never fail high.
func TestKillersArePopulatedAfterASearchWithCutoffs(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)

	s := newSearcherForTest()
	tc := infiniteTimeControl()
	res := s.SearchRoot(pos, tc, -Inf, Inf, 4)
	require.True(t, res.ok)

	assert.NotEqual(t, chessboard.NoMove, s.stack.frames[1].Killers[0])
}

// S1: mate-in-1. A rook delivers back-rank mate (the black king is
// penned in by its own pawns); depth 2 must find it and report a mate
// score.
func TestMateInOneIsFound(t *testing.T) {
	pos, err := chessboard.FromFEN("6k1/5ppp/8/8/8/8/8/3R3K w - - 0 1")
	require.NoError(t, err)

	s := newSearcherForTest()
	tc := infiniteTimeControl()
	res := s.SearchRoot(pos, tc, -Inf, Inf, 2)
	require.True(t, res.ok)
	require.NotEmpty(t, res.pv)

	assert.Equal(t, "d1d8", res.pv[0].String())
	assert.Greater(t, res.score, Inf-1000)
}

// S2: stalemate leaf. Black to move has no legal move and isn't in check:
// the position is a draw, score 0.
func TestStalemateScoresAsDraw(t *testing.T) {
	pos, err := chessboard.FromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	require.Empty(t, pos.GenerateLegalMoves())
	assert.False(t, pos.Checkers())

	s := newSearcherForTest()
	tc := infiniteTimeControl()
	res := s.SearchRoot(pos, tc, -Inf, Inf, 1)
	require.True(t, res.ok)
	assert.Equal(t, Score(0), res.score)
}

// S3: quiescence stand-pat. With depthEnd=0, SearchRoot drops straight into
// quiescence; on a quiet position with no captures available the score
// equals the static evaluation.
func TestQuiescenceStandPatMatchesStaticEval(t *testing.T) {
	pos, err := chessboard.FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	require.NoError(t, err)

	s := newSearcherForTest()
	tc := infiniteTimeControl()
	res := s.SearchRoot(pos, tc, -Inf, Inf, 0)
	require.True(t, res.ok)

	assert.Equal(t, pos.Evaluate(), res.score)
}

// S4: aspiration re-search widening. Seeding searchWithAspirationWindow with
// a target far from the true score and a deliberately tiny initial delta
// forces several fail-low/fail-high re-searches before the window finally
// contains the score; the widened search must still land on the same value
// a full-window search reports, proving the delta-doubling retries don't
// change the answer, only how many probes it takes to reach it.
func TestAspirationWindowWidensThroughFailingScoresToTrueValue(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)

	full := newSearcherForTest()
	tcFull := infiniteTimeControl()
	wantRes := full.SearchRoot(pos, tcFull, -Inf, Inf, 4)
	require.True(t, wantRes.ok)

	s := newSearcherForTest()
	tc := infiniteTimeControl()
	s.AspirationInitDelta = 1
	badTarget := wantRes.score - 500

	res := s.searchWithAspirationWindow(pos, tc, 4, badTarget)
	require.True(t, res.ok)
	assert.Equal(t, wantRes.score, res.score)
}

// S5: cancellation mid-flight. Stopping a deep search on a busy position
// returns promptly and still reports a usable best move from whatever
// depth completed.
func TestStopDuringDeepSearchReturnsPromptly(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos, err := chessboard.FromFEN(fen)
	require.NoError(t, err)

	tt := NewTranspositionTableWithCapacity(1 << 16)
	var stopped atomic.Bool
	s := NewSearcher(tt, &stopped)

	var tc TimeControl
	tc.Initialize(GoParameters{}, chessboard.White, 1)

	var finalEvent Event
	done := make(chan struct{})
	go func() {
		s.runIterativeDeepening(pos, &tc, GoParameters{Depth: 20}, func(ev Event) {
			if ev.Type == EventBest {
				finalEvent = ev
			}
		})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	stopped.Store(true)

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("search did not join within 200ms of Stop")
	}

	assert.GreaterOrEqual(t, finalEvent.Depth, 1)
}

// S6: TT hit reuse. Two back-to-back full-window searches at the same
// depth on the same position: the second completes with strictly fewer
// nodes and a non-zero TT-cut count, since the table carries useful
// bounds over from the first pass.
func TestRepeatedSearchCutsNodesViaTranspositionTable(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	s := newSearcherForTest()

	pos1, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	tc1 := infiniteTimeControl()
	res1 := s.SearchRoot(pos1, tc1, -Inf, Inf, 5)
	require.True(t, res1.ok)
	firstNodes := s.nodes.Load()

	pos2, err := chessboard.FromFEN(fen)
	require.NoError(t, err)
	tc2 := infiniteTimeControl()
	res2 := s.SearchRoot(pos2, tc2, -Inf, Inf, 5)
	require.True(t, res2.ok)

	assert.Less(t, s.nodes.Load(), firstNodes)
	assert.Greater(t, s.ttCuts, uint64(0))
}
