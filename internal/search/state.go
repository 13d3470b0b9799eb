package search

import "zugzwang/internal/chessboard"

// MaxPly bounds the recursion depth the state stack and quiescence cutoff
// support; generous relative to any depth this search core is asked to run.
const MaxPly = 128

// SearchState is one ply's frame: its killer pair and the PV continuation
// rooted at this ply. Frames live in a single pre-allocated array addressed
// by ply index rather than a linked structure.
type SearchState struct {
	Killers [2]chessboard.Move
	PV      []chessboard.Move
}

// stateStack is the fixed [MaxPly]SearchState buffer plus a cursor.
// push/pop advance and retreat the cursor; killers start as NoMove and are
// carried forward untouched across push and reset, never cleared per node
// or between searches.
type stateStack struct {
	frames [MaxPly]SearchState
	ply    int
}

func newStateStack() *stateStack {
	s := &stateStack{}
	for i := range s.frames {
		s.frames[i].Killers = [2]chessboard.Move{chessboard.NoMove, chessboard.NoMove}
		s.frames[i].PV = make([]chessboard.Move, 0, MaxPly)
	}
	return s
}

func (s *stateStack) reset() { s.ply = 0 }

// push advances to the child frame and clears its PV length (not its
// killers), then returns it.
func (s *stateStack) push() *SearchState {
	s.ply++
	s.frames[s.ply].PV = s.frames[s.ply].PV[:0]
	return &s.frames[s.ply]
}

func (s *stateStack) pop() { s.ply-- }

func (s *stateStack) current() *SearchState { return &s.frames[s.ply] }

// updatePV prepends move to the current frame's PV, followed by the child
// frame's already-settled continuation.
func (s *stateStack) updatePV(move chessboard.Move, child []chessboard.Move) {
	cur := s.current()
	cur.PV = append(cur.PV[:0], move)
	cur.PV = append(cur.PV, child...)
}

// updateKiller applies the 2-slot move-to-front rule: if move already
// occupies the front slot, nothing changes (including when it was already
// equal to k1 beforehand); otherwise move becomes k1 and the two slots are
// swapped so move ends up at k0.
func (s *stateStack) updateKiller(move chessboard.Move) {
	cur := s.current()
	if cur.Killers[0] == move {
		return
	}
	cur.Killers[1] = move
	cur.Killers[0], cur.Killers[1] = cur.Killers[1], cur.Killers[0]
}
