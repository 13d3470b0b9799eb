package search

import (
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"zugzwang/internal/chessboard"
)

// entrySize is the in-memory footprint of one TTEntry, used only to convert
// a byte budget into an element count.
const entrySize = 24

// TTEntry is one transposition-table slot. Key carries the verification tag
// tagOf derives from the high 32 bits of the full position hash (the index
// itself already encodes the low bits); depth/score/eval/move/type
// keep the entry compact enough that the table fits in cache.
type TTEntry struct {
	Key   uint32
	Depth int8
	Score Score
	Eval  Score
	Move  chessboard.Move
	Type  NodeType
}

// valid reports whether this slot actually holds a stored entry, as opposed
// to a zero-valued, never-written one; NodeAll happens to be the zero value
// of NodeType, so an empty slot cannot be told apart from an ALL-bound entry
// at depth 0 without a side channel, hence checking Key against the probe
// (tagOf never returns 0, the Key of an empty slot).
func (e TTEntry) valid(key uint32) bool { return e.Key == key }

// TranspositionTable is a fixed-capacity, always-replace store keyed by the
// low bits of the position hash. Sizing follows
// domino14-macondo/endgame/negamax/transposition_table.go's
// Reset(fractionOfMemory): a fraction of system memory, rounded down to the
// nearest power of two, obtained via github.com/pbnjay/memory rather than
// hardcoding a table size.
type TranspositionTable struct {
	table    []TTEntry
	sizeMask uint64
}

// NewTranspositionTable sizes a table as fractionOfMemory of total system
// RAM, rounded to a power of two, with a floor of 2^16 entries so tiny or
// containerized environments still get a usable table.
func NewTranspositionTable(fractionOfMemory float64) *TranspositionTable {
	total := memory.TotalMemory()
	desired := fractionOfMemory * float64(total) / float64(entrySize)
	power := int(math.Log2(desired))
	if power < 16 {
		power = 16
	}
	numElems := 1 << power
	log.Info().
		Int("num-elems", numElems).
		Int("bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", total).
		Msg("transposition table sized")
	return &TranspositionTable{
		table:    make([]TTEntry, numElems),
		sizeMask: uint64(numElems - 1),
	}
}

// NewTranspositionTableWithCapacity builds a table with an exact element
// count (rounded up to a power of two); primarily for tests, where sizing
// against real system memory would make table size machine-dependent.
func NewTranspositionTableWithCapacity(minElems int) *TranspositionTable {
	power := 1
	for (1 << power) < minElems {
		power++
	}
	numElems := 1 << power
	return &TranspositionTable{
		table:    make([]TTEntry, numElems),
		sizeMask: uint64(numElems - 1),
	}
}

// tagOf is the high 32 bits of key with the lowest bit forced to 1, so a
// stored tag is never 0 and never matches a zero-valued, never-written slot.
func tagOf(key uint64) uint32 { return uint32(key>>32) | 1 }

// Get returns the entry stored for key, if the slot's verification tag
// matches. A miss (or a collision with an unrelated key) reports ok=false;
// callers must never trust a TT entry beyond what (a) its depth and (b)
// its bound direction justify against the current alpha/beta.
func (t *TranspositionTable) Get(key uint64) (TTEntry, bool) {
	idx := key & t.sizeMask
	entry := t.table[idx]
	tag := tagOf(key)
	if !entry.valid(tag) {
		return TTEntry{}, false
	}
	return entry, true
}

// Put unconditionally overwrites the slot for key (always-replace).
func (t *TranspositionTable) Put(key uint64, entry TTEntry) {
	idx := key & t.sizeMask
	entry.Key = tagOf(key)
	t.table[idx] = entry
}

// Clear resets every slot. The coordinator never calls it, so the table
// carries over from one search to the next.
func (t *TranspositionTable) Clear() {
	clear(t.table)
}
