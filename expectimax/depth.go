package expectimax

import (
	"math/bits"

	"github.com/domino14/twenty48/board"
)

const (
	MinDepthLimit = 3
	MaxDepthLimit = 6
)

// Rank-set thresholds. A rank set has bit r set for each rank r on the
// board, so these read as "largest tile is 2048", "2048 and 1024", and so
// on.
const (
	tier2048     = 2048
	tier2048Plus = 2048 + 1024
	tier4096     = 4096
)

// DepthLimit picks the search depth for the board before the top-level move
// is applied. Boards whose largest tile is at most 2048 get the minimum
// depth. Past that, each distinct tile rank beyond the second adds a ply,
// capped by a limit that grows with the largest tiles present.
func DepthLimit(b board.Board) int {
	var bitset uint16
	// Scans up to the highest occupied cell, so bit 0 only reflects empty
	// cells below it.
	for ; b != 0; b >>= 4 {
		bitset |= 1 << (b & 0xf)
	}

	var maxLimit int
	switch {
	case bitset <= tier2048:
		return MinDepthLimit
	case bitset <= tier2048Plus:
		maxLimit = 4
	case bitset <= tier4096:
		maxLimit = 5
	default:
		maxLimit = MaxDepthLimit
	}

	count := bits.OnesCount16(bitset>>1) - 2
	if count < MinDepthLimit {
		count = MinDepthLimit
	}
	if count > maxLimit {
		count = maxLimit
	}
	return count
}
