package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"zugzwang/internal/chessboard"
	"zugzwang/internal/search"
)

// Session owns one position and the Coordinator searching it, identified by
// a uuid for log correlation the way
// internal/server/game/manager.go keys games by uuid.NewString() — adapted
// here from an HTTP session map to a single in-process CLI session, since a
// line-oriented driver only ever searches one position at a time.
type Session struct {
	id   string
	pos  *chessboard.Position
	coor *search.Coordinator
}

// NewSession starts a fresh session at the standard starting position.
func NewSession(cfg sessionConfig) *Session {
	s := &Session{
		id:  uuid.NewString(),
		pos: chessboard.NewInitialPosition(),
	}
	tt := search.NewTranspositionTable(cfg.ttMemoryFraction)
	s.coor = search.NewCoordinator(tt)
	s.coor.SafetyFactor = cfg.safetyFactor
	s.coor.AspirationInitDelta = search.Score(cfg.aspirationInitDelta)
	log.Info().Str("session_id", s.id).Msg("session started")
	return s
}

type sessionConfig struct {
	ttMemoryFraction    float64
	aspirationInitDelta int
	safetyFactor        float64
}

// SetPosition replaces the session's position, either the standard
// starting position or a FEN, followed by a sequence of coordinate-notation
// moves (e.g. "e2e4", "e7e8q") applied in order.
func (s *Session) SetPosition(startpos bool, fen string, uciMoves []string) error {
	var pos *chessboard.Position
	if startpos {
		pos = chessboard.NewInitialPosition()
	} else {
		p, err := chessboard.FromFEN(fen)
		if err != nil {
			return err
		}
		pos = p
	}

	for _, mv := range uciMoves {
		move, err := findLegalMove(pos, mv)
		if err != nil {
			return err
		}
		pos.MakeMove(move)
	}

	s.pos = pos
	return nil
}

// findLegalMove matches a coordinate-notation string (as the move picker
// and Move.String render it) against the position's legal moves; it never
// trusts the string's shape beyond that comparison.
func findLegalMove(pos *chessboard.Position, uci string) (chessboard.Move, error) {
	for _, m := range pos.GenerateLegalMoves() {
		if m.String() == uci {
			return m, nil
		}
	}
	return chessboard.NoMove, fmt.Errorf("zugzwang: %q is not a legal move in the current position", uci)
}

// Go starts a search on the session's position; callback receives INFO/BEST
// events as the iterative deepening driver produces them.
func (s *Session) Go(params search.GoParameters, callback func(search.Event)) error {
	return s.coor.Go(s.pos, params, callback)
}

func (s *Session) Stop() error { return s.coor.Stop() }
func (s *Session) Wait() error { return s.coor.Wait() }
