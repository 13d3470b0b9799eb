// Package searchscore defines the Score type shared by package chessboard
// (whose Position.Evaluate/EvaluateLeaf must return one) and package search
// (the canonical owner of the type, which re-exports it as search.Score to
// avoid chessboard depending on the search package proper).
package searchscore

// Score is a bounded centipawn-ish evaluation, always from the side to
// move's perspective.
type Score int32

// Inf is a sentinel larger (in magnitude) than any real evaluation; it is
// never itself stored as a position's evaluation. Mate scores are encoded
// as Inf minus distance-to-mate so they stay monotone in mate distance and
// strictly below Inf.
const Inf Score = 1_000_000

// None marks an absent/invalidated score (search was cancelled). It sits
// outside the closed [-Inf, +Inf] interval so it can never collide with a
// legal or mate score.
const None Score = Score(-1 << 30)

func (s Score) IsNone() bool { return s == None }
