package game

import (
	"os"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/rowtable"
)

func TestMain(m *testing.M) {
	rowtable.Initialize()
	os.Exit(m.Run())
}

func TestDrawTileDistribution(t *testing.T) {
	is := is.New(t)
	r := NewSeededRandomizer(99)
	fours := 0
	const n = 100000
	for i := 0; i < n; i++ {
		tile := r.DrawTile()
		is.True(tile == 1 || tile == 2)
		if tile == 2 {
			fours++
		}
	}
	// expect ~10%
	is.True(fours > n/12)
	is.True(fours < n/8)
}

func TestSeededRandomizerIsDeterministic(t *testing.T) {
	is := is.New(t)
	a := NewSeededRandomizer(1234)
	b := NewSeededRandomizer(1234)
	for i := 0; i < 100; i++ {
		is.Equal(a.InitialBoard(), b.InitialBoard())
	}
}

func TestInsertTileRand(t *testing.T) {
	is := is.New(t)
	r := NewSeededRandomizer(5)
	b, err := board.Parse("2 4 8 16 32 64 128 256 512 1024 2048 0 4 8 16 32")
	is.NoErr(err)
	// a single empty cell always receives the tile
	for i := 0; i < 20; i++ {
		placed := r.InsertTileRand(b, 2)
		is.Equal(placed.Rank(11), uint8(2))
		is.Equal(board.CountEmpty(placed), 0)
	}
	full := b.WithRank(11, 1)
	is.Equal(r.InsertTileRand(full, 1), full)

	// every empty cell gets hit eventually
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		placed := r.InsertTileRand(0, 1)
		is.Equal(board.CountNonEmpty(placed), 1)
		for c := 0; c < board.NumCells; c++ {
			if placed.Rank(c) != 0 {
				seen[c] = true
			}
		}
	}
	is.Equal(len(seen), board.NumCells)
}

func TestInitialBoard(t *testing.T) {
	is := is.New(t)
	r := NewSeededRandomizer(77)
	for i := 0; i < 100; i++ {
		b := r.InitialBoard()
		is.Equal(board.CountNonEmpty(b), 2)
		for _, rank := range b.Ranks() {
			is.True(rank <= 2)
		}
	}
}

func TestPlayMove(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse("2 2 0 0 0 0 0 0 0 0 0 0 0 0 0 0")
	is.NoErr(err)
	g := NewGameFromBoard(b, NewSeededRandomizer(3))
	is.True(g.Playing())

	is.Equal(g.PlayMove(board.Up), ErrIllegalMove)
	is.Equal(g.Turn(), 0)

	is.NoErr(g.PlayMove(board.Left))
	is.Equal(g.Turn(), 1)
	is.Equal(g.History(), []board.Direction{board.Left})
	is.Equal(g.Board().Rank(0), uint8(2))
	is.Equal(board.CountNonEmpty(g.Board()), 2)
	is.True(g.MaxTile() >= 4)
	is.True(g.Score() >= 0)
	is.True(g.Uid() != "")
}

func TestScorePenalty(t *testing.T) {
	is := is.New(t)
	rng := NewSeededRandomizer(8)
	g := NewGame(rng)
	for g.Playing() && g.Turn() < 200 {
		for _, d := range board.Directions {
			if g.PlayMove(d) == nil {
				break
			}
		}
	}
	is.True(g.scorePenalty%FourTilePenalty == 0)
	is.Equal(g.Score(), equity.Score(g.Board())-g.scorePenalty)
}

func TestGameOver(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse("2 4 2 4 4 2 4 2 2 4 2 4 4 2 4 2")
	is.NoErr(err)
	g := NewGameFromBoard(b, NewRandomizer())
	is.True(!g.Playing())
	is.Equal(g.PlayMove(board.Left), ErrGameOver)
	is.Equal(g.MaxTile(), 4)
}
