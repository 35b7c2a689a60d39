package automatic

import (
	"strconv"

	"github.com/cespare/xxhash"
)

// GameSeed derives the tile seed for game idx of a run. A zero base seed
// stays zero so every game draws from system entropy.
func GameSeed(base uint64, idx int) uint64 {
	if base == 0 {
		return 0
	}
	s := xxhash.Sum64String(strconv.FormatUint(base, 10) + ":" + strconv.Itoa(idx))
	if s == 0 {
		// zero means unseeded
		s = 1
	}
	return s
}
