package mechanics

import (
	"math/rand"
	"os"
	"os/exec"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/rowtable"
)

// unbuiltEnv makes the test binary skip building the row tables.
const unbuiltEnv = "TWENTY48_TABLES_UNBUILT"

func TestMain(m *testing.M) {
	if os.Getenv(unbuiltEnv) == "" {
		rowtable.Initialize()
	}
	os.Exit(m.Run())
}

// TestPanicsBeforeInitialize runs itself again in a fresh process where the
// tables were never built.
func TestPanicsBeforeInitialize(t *testing.T) {
	if os.Getenv(unbuiltEnv) == "" {
		cmd := exec.Command(os.Args[0], "-test.run=^TestPanicsBeforeInitialize$", "-test.v")
		cmd.Env = append(os.Environ(), unbuiltEnv+"=1")
		out, err := cmd.CombinedOutput()
		assert.NoError(t, err, string(out))
		return
	}
	assert.False(t, rowtable.Initialized())
	b := board.Board(0x1100)
	for _, d := range board.Directions {
		assert.PanicsWithValue(t, rowtable.ErrNotInitialized, func() { ExecuteMove(b, d) })
	}
	assert.PanicsWithValue(t, rowtable.ErrNotInitialized, func() { CanMove(b) })
	assert.PanicsWithValue(t, rowtable.ErrNotInitialized, func() { equity.Heuristic(b) })
	assert.PanicsWithValue(t, rowtable.ErrNotInitialized, func() { equity.Score(b) })
}

func mustParse(t *testing.T, s string) board.Board {
	t.Helper()
	b, err := board.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestExecuteMoveDirections(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `
		2 2 0 4
		0 0 0 4
		2 0 8 0
		2 0 8 8`)

	is.Equal(ExecuteMove(b, board.Left), mustParse(t, `
		4 4 0 0
		4 0 0 0
		2 8 0 0
		2 16 0 0`))

	is.Equal(ExecuteMove(b, board.Right), mustParse(t, `
		0 0 4 4
		0 0 0 4
		0 0 2 8
		0 0 2 16`))

	is.Equal(ExecuteMove(b, board.Up), mustParse(t, `
		4 2 16 8
		2 0 0 8
		0 0 0 0
		0 0 0 0`))

	is.Equal(ExecuteMove(b, board.Down), mustParse(t, `
		0 0 0 0
		0 0 0 0
		2 0 0 8
		4 2 16 8`))
}

// A move that only slides leaves nothing for a second identical move to do.
// A move that merged may enable a new merge ([2 2 4 0] -> [4 4 0 0] -> [8 0 0 0]),
// but it never leaves a gap to slide into.
func TestExecuteMoveResolves(t *testing.T) {
	is := is.New(t)
	r := rand.New(rand.NewSource(2048))
	for i := 0; i < 5000; i++ {
		b := board.Board(r.Uint64())
		for _, d := range board.Directions {
			once := ExecuteMove(b, d)
			twice := ExecuteMove(once, d)
			if board.CountEmpty(once) == board.CountEmpty(b) {
				is.Equal(twice, once)
				continue
			}
			// any further change must come from a merge
			is.True(twice == once || board.CountEmpty(twice) > board.CountEmpty(once))
		}
	}

	b := mustParse(t, "2 2 4 0 0 0 0 0 0 0 0 0 0 0 0 0")
	once := ExecuteMove(b, board.Left)
	is.Equal(once, mustParse(t, "4 4 0 0 0 0 0 0 0 0 0 0 0 0 0 0"))
	is.Equal(ExecuteMove(once, board.Left), mustParse(t, "8 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0"))
}

func TestExecuteMovePreservesTileSum(t *testing.T) {
	is := is.New(t)
	r := rand.New(rand.NewSource(4096))
	sum := func(b board.Board) int {
		s := 0
		for _, v := range b.Values() {
			s += v
		}
		return s
	}
	for i := 0; i < 2000; i++ {
		var ranks [board.NumCells]uint8
		for c := range ranks {
			// stay below the rank cap so no value is lost
			ranks[c] = uint8(r.Intn(12))
		}
		b := board.FromRanks(ranks)
		for _, d := range board.Directions {
			is.Equal(sum(ExecuteMove(b, d)), sum(b))
		}
	}
}

func TestStuckBoard(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `
		2 4 2 4
		4 2 4 2
		2 4 2 4
		4 2 4 2`)
	for _, d := range board.Directions {
		is.Equal(ExecuteMove(b, d), b)
	}
	is.True(!CanMove(b))
	is.Equal(len(LegalMoves(b)), 0)
}

func TestLegalMoves(t *testing.T) {
	is := is.New(t)
	// only tiles in the top-left corner: up and left do nothing
	b := mustParse(t, `
		2 4 0 0
		4 2 0 0
		0 0 0 0
		0 0 0 0`)
	is.Equal(LegalMoves(b), []board.Direction{board.Down, board.Right})
	is.True(CanMove(b))
	is.True(!IsLegal(b, board.Up))
}

func TestUnknownDirection(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "2 2 0 0 0 0 0 0 0 0 0 0 0 0 0 0")
	is.Equal(ExecuteMove(b, board.NoMove), b)
}

func TestRankCap(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "32768 32768 0 0 0 0 0 0 0 0 0 0 0 0 0 0")
	moved := ExecuteMove(b, board.Left)
	is.Equal(moved.Rank(0), uint8(board.MaxRank))
	is.Equal(moved.Rank(1), uint8(0))
}

func BenchmarkExecuteMove(b *testing.B) {
	bd := board.Board(0x1234_0213_5001_2211)
	for i := 0; i < b.N; i++ {
		for _, d := range board.Directions {
			bd ^= ExecuteMove(bd, d) & 0x1
		}
	}
}
