package expectimax

import (
	"github.com/pbnjay/memory"

	"github.com/domino14/twenty48/board"
)

// A map entry costs roughly this much: the 8-byte key, the 16-byte value
// and the bucket overhead.
const ttEntrySize = 48

// ttMemoryFraction is the share of system memory one table may fill.
const ttMemoryFraction = 0.25

type tableEntry struct {
	depth     uint8
	heuristic float64
}

// TranspositionTable caches chance-node values for a single top-level move
// evaluation. It is owned by one EvalState and is never shared, so it needs
// no locking; it is dropped with its EvalState.
type TranspositionTable struct {
	table      map[board.Board]tableEntry
	maxEntries int
	lookups    uint64
	hits       uint64
	created    uint64
}

// maxTableEntries caps a table at a fraction of system memory. Four tables
// live at once during a parallel search. Zero means no cap, used when the
// system memory size is unknown.
func maxTableEntries() int {
	total := memory.TotalMemory()
	if total == 0 {
		return 0
	}
	return int(ttMemoryFraction * float64(total) / float64(4*ttEntrySize))
}

func NewTranspositionTable() *TranspositionTable {
	return newTranspositionTable(maxTableEntries())
}

func newTranspositionTable(maxEntries int) *TranspositionTable {
	return &TranspositionTable{
		table:      make(map[board.Board]tableEntry),
		maxEntries: maxEntries,
	}
}

// lookup returns the cached value for b if it may stand in for a search at
// depth.
//
// An entry is reusable only when it was recorded at a depth <= the lookup
// depth. An entry recorded nearer the root searched more plies below it than
// a node at the current depth would, so it is at least as complete. An entry
// recorded deeper than the lookup depth must not be used. Do not invert this
// comparison.
func (t *TranspositionTable) lookup(b board.Board, depth int) (float64, bool) {
	t.lookups++
	entry, ok := t.table[b]
	if !ok || int(entry.depth) > depth {
		return 0, false
	}
	t.hits++
	return entry.heuristic, true
}

// store records the value of b computed at depth. The first value stored for
// a board is kept; later stores for the same board, including ones from a
// shallower depth that missed in lookup, leave it alone. Nodes at or beyond
// CacheDepthLimit are not cached, and neither is anything once the table
// is full.
func (t *TranspositionTable) store(b board.Board, depth int, value float64) {
	if depth >= CacheDepthLimit {
		return
	}
	if _, ok := t.table[b]; ok {
		return
	}
	if t.maxEntries > 0 && len(t.table) >= t.maxEntries {
		return
	}
	t.table[b] = tableEntry{depth: uint8(depth), heuristic: value}
	t.created++
}

// Len is the number of cached positions.
func (t *TranspositionTable) Len() int {
	return len(t.table)
}
