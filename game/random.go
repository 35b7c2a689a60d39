package game

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/domino14/twenty48/board"
)

const (
	// FourTileOdds is 1 in this many draws producing a 4 instead of a 2.
	FourTileOdds = 10
)

// Randomizer draws new tiles and picks the cells they land on.
type Randomizer struct {
	rng *frand.RNG
}

// NewRandomizer returns a randomizer seeded from system entropy.
func NewRandomizer() *Randomizer {
	return &Randomizer{rng: frand.New()}
}

// NewSeededRandomizer returns a deterministic randomizer; the same seed
// always produces the same tiles in the same cells.
func NewSeededRandomizer(seed uint64) *Randomizer {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return &Randomizer{rng: frand.NewCustom(key[:], 1024, 12)}
}

// DrawTile returns rank 1 (a 2) with probability 0.9 and rank 2 (a 4)
// otherwise.
func (r *Randomizer) DrawTile() uint8 {
	if r.rng.Intn(FourTileOdds) < FourTileOdds-1 {
		return 1
	}
	return 2
}

// InsertTileRand places a tile of the given rank on a uniformly chosen
// empty cell. A full board is returned unchanged.
func (r *Randomizer) InsertTileRand(b board.Board, rank uint8) board.Board {
	empty := board.CountEmpty(b)
	if empty == 0 {
		return b
	}
	index := r.rng.Intn(empty)
	for i := 0; i < board.NumCells; i++ {
		if b.Rank(i) != 0 {
			continue
		}
		if index == 0 {
			return b.WithRank(i, rank)
		}
		index--
	}
	return b
}

// InitialBoard returns a board with two random tiles.
func (r *Randomizer) InitialBoard() board.Board {
	b := board.Board(0).WithRank(r.rng.Intn(board.NumCells), r.DrawTile())
	return r.InsertTileRand(b, r.DrawTile())
}
