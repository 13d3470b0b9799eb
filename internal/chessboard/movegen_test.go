package chessboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perft(pos *Position, depth int) int {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		pos.MakeMove(m)
		nodes += perft(pos, depth-1)
		pos.UnmakeMove(m)
	}
	return nodes
}

func TestGenerateLegalMovesInitialPositionCounts(t *testing.T) {
	pos := NewInitialPosition()
	assert.Equal(t, 20, perft(pos, 1))
	assert.Equal(t, 400, perft(pos, 2))
	assert.Equal(t, 8902, perft(pos, 3))
}

func TestGenerateLegalMovesKiwipeteCounts(t *testing.T) {
	pos, err := FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	assert.Equal(t, 48, perft(pos, 1))
	assert.Equal(t, 2039, perft(pos, 2))
}

func TestCastlingBlockedThroughCheckIsExcluded(t *testing.T) {
	// White king on e1, rook on h1, black rook on f8 blocks kingside castling
	// by attacking f1; castling must not appear among the legal moves.
	pos, err := FromFEN("5r2/8/8/8/8/8/8/4K2R w K - 0 1")
	require.NoError(t, err)
	moves := pos.GenerateLegalMoves()
	for _, m := range moves {
		assert.NotEqual(t, FlagCastleKingside, m.Flag())
	}
}

func TestCastlingAvailableWhenClear(t *testing.T) {
	pos, err := FromFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	require.NoError(t, err)
	found := false
	for _, m := range pos.GenerateLegalMoves() {
		if m.Flag() == FlagCastleKingside {
			found = true
		}
	}
	assert.True(t, found, "kingside castle should be legal")
}

func TestPinnedPieceCannotMoveOffPinLine(t *testing.T) {
	// Black rook on e8 pins the White knight on e4 to the White king on e1.
	pos, err := FromFEN("4r2k/8/8/8/4N3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	for _, m := range pos.GenerateLegalMoves() {
		if m.From() == SquareOf(4, 3) {
			assert.Equal(t, 4, FileOf(m.To()), "pinned knight must stay on the e-file")
		}
	}
}

func TestNoLegalMovesInCheckmate(t *testing.T) {
	// Fool's mate final position: White to move, checkmated.
	pos, err := FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	assert.Empty(t, pos.GenerateLegalMoves())
	assert.True(t, pos.Checkers())
}

func TestNoLegalMovesInStalemateIsNotCheck(t *testing.T) {
	// Classic king-and-queen-vs-king stalemate: Black to move, not in check.
	pos, err := FromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	assert.Empty(t, pos.GenerateLegalMoves())
	assert.False(t, pos.Checkers())
}
