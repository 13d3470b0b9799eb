package search

import (
	"time"

	"zugzwang/internal/chessboard"
)

// defaultSafetyFactor shaves the computed budget down so a search finishes
// comfortably inside its allotment instead of right at the edge.
// Overridable per TimeControl via SafetyFactor, the tuning knob
// internal/engineconfig reads from viper.
const defaultSafetyFactor = 0.8

// infDuration stands in for "no time limit": a duration long enough that no
// real search will ever hit it.
const infDuration = 365 * 24 * time.Hour

// GoParameters are the per-search time/depth limits a controller supplies
// (milliseconds; Depth must be > 0).
type GoParameters struct {
	Time       [2]int // ms remaining, indexed by chessboard.Side
	Inc        [2]int // ms increment per move, indexed by chessboard.Side
	MovesToGo  int
	MoveTimeMs int
	Depth      int
}

// TimeControl derives a deadline from GoParameters and answers a cheap
// "still within limit?" query at every node.
type TimeControl struct {
	// SafetyFactor overrides defaultSafetyFactor when non-zero.
	SafetyFactor float64

	start  time.Time
	finish time.Time
}

// Initialize computes the deadline as the minimum of movetime, a
// proportional budget share, and (in the opening) a fixed cap, then applies
// the safety factor.
func (tc *TimeControl) Initialize(params GoParameters, side chessboard.Side, ply int) {
	tc.start = time.Now()
	duration := infDuration

	if params.MoveTimeMs != 0 {
		if d := time.Duration(params.MoveTimeMs) * time.Millisecond; d < duration {
			duration = d
		}
	}

	if params.Time[side] != 0 {
		t := float64(params.Time[side])
		inc := float64(params.Inc[side])
		cnt := params.MovesToGo
		if cnt == 0 {
			cnt = 32 - ply/2
			if cnt < 10 {
				cnt = 10
			}
		}
		share := (t + inc*float64(cnt-1)) / float64(cnt)
		if d := time.Duration(share) * time.Millisecond; d < duration {
			duration = d
		}

		if ply <= 8 {
			openingCap := time.Duration(1000+125*ply) * time.Millisecond
			if openingCap < duration {
				duration = openingCap
			}
		}
	}

	factor := tc.SafetyFactor
	if factor == 0 {
		factor = defaultSafetyFactor
	}
	tc.finish = tc.start.Add(time.Duration(factor * float64(duration)))
}

// CheckLimit reports whether the deadline hasn't passed yet; cheap enough
// (one monotonic clock read, no syscall) to call at every search node.
func (tc *TimeControl) CheckLimit() bool {
	return time.Now().Before(tc.finish)
}

// Elapsed reports milliseconds since Initialize, for Stats.TimeMs reporting.
func (tc *TimeControl) Elapsed() int64 {
	return time.Since(tc.start).Milliseconds()
}

// Budget reports the total milliseconds Initialize allotted, for the root
// debug event the driver emits before depth 1.
func (tc *TimeControl) Budget() int64 {
	return tc.finish.Sub(tc.start).Milliseconds()
}
