package search

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"zugzwang/internal/chessboard"
)

// ErrSearchRunning is returned by Go when a previous search hasn't been
// joined yet; calling Go again before Wait is a programming error,
// reported here as an error rather than a panic so a careless front end
// fails loudly instead of corrupting shared state.
var ErrSearchRunning = errors.New("search: Go called before previous search was joined")

// ErrNoLegalMove is returned by Go when the position handed to it has no
// legal move at all (checkmate or stalemate already reached); there is
// nothing to search.
var ErrNoLegalMove = errors.New("search: position has no legal move")

// Coordinator is the controller-facing half of the worker/controller
// contract: it owns the cancellation flag, runs the iterative deepening
// driver on a worker goroutine, and exposes Go/Stop/Wait. Grounded on
// domino14-macondo/endgame/negamax/solver.go's Solve, which pairs a
// search goroutine with a ticker goroutine through an errgroup.Group;
// here the ticker logs node progress at debug level. Stats.NPS in events is
// computed separately by the driver from the node count and elapsed time.
type Coordinator struct {
	searcher *Searcher
	stopped  atomic.Bool

	// SafetyFactor and AspirationInitDelta, when non-zero, override the
	// Searcher/TimeControl defaults; set from internal/engineconfig by the
	// front end.
	SafetyFactor        float64
	AspirationInitDelta Score

	group   *errgroup.Group
	running atomic.Bool
}

// NewCoordinator wires a Coordinator around a fresh Searcher and its
// transposition table.
func NewCoordinator(tt *TranspositionTable) *Coordinator {
	c := &Coordinator{}
	c.searcher = NewSearcher(tt, &c.stopped)
	return c
}

// Go starts a search on a worker goroutine and returns immediately;
// callback receives INFO/BEST events in depth order. It is an error to
// call Go again before Wait (or Stop, which calls Wait internally) returns.
func (c *Coordinator) Go(pos *chessboard.Position, params GoParameters, callback func(Event)) error {
	if c.running.Load() {
		return ErrSearchRunning
	}
	if len(pos.GenerateLegalMoves()) == 0 {
		return ErrNoLegalMove
	}
	c.running.Store(true)
	c.stopped.Store(false)

	searchID := uuid.NewString()
	log.Info().Str("search_id", searchID).Int("depth", params.Depth).Msg("search started")

	c.searcher.AspirationInitDelta = c.AspirationInitDelta

	var tc TimeControl
	tc.SafetyFactor = c.SafetyFactor
	tc.Initialize(params, pos.SideToMove, pos.Ply())

	c.group = &errgroup.Group{}
	done := make(chan struct{})

	c.group.Go(func() error {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := c.searcher.nodes.Load()
				log.Debug().Str("search_id", searchID).Uint64("nps", nodes-lastNodes).Msg("search progress")
				lastNodes = nodes
			}
		}
	})

	c.group.Go(func() error {
		defer close(done)
		c.searcher.runIterativeDeepening(pos, &tc, params, callback)
		return nil
	})

	return nil
}

// Stop requests cancellation and joins the worker: write the atomic flag
// exactly once, then wait. Wait resets the flag afterward so a subsequent
// Go starts clean.
func (c *Coordinator) Stop() error {
	if !c.running.Load() {
		return nil
	}
	c.stopped.Store(true)
	return c.Wait()
}

// Wait joins the worker goroutines. After it returns, the cancellation
// flag is reset and a new Go is permitted.
func (c *Coordinator) Wait() error {
	if !c.running.Load() {
		return nil
	}
	err := c.group.Wait()
	c.stopped.Store(false)
	c.running.Store(false)
	return err
}
