package chessboard

import (
	"encoding/binary"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Zobrist keys for incremental hashing. The per-square piece table is the
// classic approach (no library does this part for you); side-to-move,
// castling rights and the en-passant file are folded into the key through
// xxhash rather than a hand-rolled mixing function, grounded on the rest of
// the retrieval pack reaching for a real hash package (macondo depends on
// cespare/xxhash for its own zobrist.Zobrist) instead of rolling one.
var (
	zobristPieceSquare [2][7][NumSquares]uint64
	zobristCastle      [16]uint64
	zobristEPFile      [8]uint64
	zobristSideToMove  uint64
)

func init() {
	rng := rand.New(rand.NewSource(0x6176726973742132))
	for side := 0; side < 2; side++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := 0; sq < NumSquares; sq++ {
				zobristPieceSquare[side][pt][sq] = rng.Uint64()
			}
		}
	}
	for i := range zobristCastle {
		zobristCastle[i] = foldAux("castle", uint64(i))
	}
	for i := range zobristEPFile {
		zobristEPFile[i] = foldAux("ep", uint64(i))
	}
	zobristSideToMove = foldAux("stm", 1)
}

// foldAux derives a pseudo-random 64-bit key for a small auxiliary-state
// value by hashing a short tag plus the value through xxhash, rather than
// drawing from the shared piece-square RNG stream.
func foldAux(tag string, v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h := xxhash.New()
	_, _ = h.WriteString(tag)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

func pieceKey(p Piece, sq int) uint64 {
	if p == NoPiece {
		return 0
	}
	return zobristPieceSquare[p.Side()][p.Type()][sq]
}

// CalculateHash recomputes the Zobrist key from scratch; used when loading
// a FEN and as a correctness cross-check against incremental updates.
func (pos *Position) CalculateHash() uint64 {
	var h uint64
	for sq := 0; sq < NumSquares; sq++ {
		h ^= pieceKey(pos.Board.Squares[sq], sq)
	}
	h ^= zobristCastle[pos.CastleRights]
	if pos.EPSquare >= 0 {
		h ^= zobristEPFile[FileOf(int(pos.EPSquare))]
	}
	if pos.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
