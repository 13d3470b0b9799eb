// Package search implements the negamax search core: iterative deepening
// with aspiration windows, alpha-beta with quiescence, a transposition
// table, killer moves and history heuristics, time control, and the
// go/stop/wait worker contract.
package search

import "zugzwang/internal/search/searchscore"

// Score is re-exported from searchscore rather than defined here directly,
// so that package chessboard (which must return a Score from
// Position.Evaluate) doesn't have to import this package and create a
// cycle back through chessboard.Move/Position.
type Score = searchscore.Score

const (
	Inf       = searchscore.Inf
	ScoreNone = searchscore.None
)

// NodeType records whether a stored score is exact or a one-sided bound.
type NodeType uint8

const (
	NodeAll NodeType = iota // upper bound: true score <= stored
	NodeCut                 // lower bound: true score >= stored
	NodePV                  // exact
)
