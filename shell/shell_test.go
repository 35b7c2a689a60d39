package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/twenty48/automatic"
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/rowtable"
)

func TestMain(m *testing.M) {
	rowtable.Initialize()
	os.Exit(m.Run())
}

func testController() (*ShellController, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSeed, 21)
	cfg.Set(config.ConfigMaxTurns, 10)
	return newController(cfg, &out), &out
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.txt",
			&shellcmd{"autoplay", nil, map[string]string{"file": "/path/to/log.txt"}},
			nil},
		{"step 5",
			&shellcmd{"step", []string{"5"}, map[string]string{}},
			nil},
		{"autoplay 10 4 -file foo.txt ",
			&shellcmd{"autoplay", []string{"10", "4"}, map[string]string{"file": "foo.txt"}},
			nil},
		{`setboard "2 4 - -" . 8`,
			&shellcmd{"setboard", []string{"2 4 - -", ".", "8"}, map[string]string{}},
			nil},
		{"set seed -5",
			&shellcmd{"set", []string{"seed", "-5"}, map[string]string{}},
			nil},
		{"autoplay 10 -file",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func TestNeedsGame(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	for _, line := range []string{"show", "best", "step", "eval"} {
		_, err := sc.execute(line)
		is.Equal(err, errNoGame)
	}
}

func TestSetBoardAndBest(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	resp, err := sc.execute("setboard 2 4 2 0 / 4 2 4 0 / 2 4 2 0 / 4 2 4 0")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Turn 0"))

	resp, err = sc.execute("best")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Best: right"))

	_, err = sc.execute("setboard 2 4 8")
	is.True(errors.Is(err, board.ErrBadCellCount))
}

func TestBestWhenStuck(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	_, err := sc.execute("setboard 2 4 2 4 4 2 4 2 2 4 2 4 4 2 4 2")
	is.NoErr(err)
	resp, err := sc.execute("best")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "No legal move"))

	resp, err = sc.execute("show")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "game over"))
}

func TestNewAndStep(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	_, err := sc.execute("new 7")
	is.NoErr(err)
	first := sc.game.Board()
	is.Equal(board.CountNonEmpty(first), 2)

	resp, err := sc.execute("step 3")
	is.NoErr(err)
	is.Equal(sc.game.Turn(), 3)
	is.True(strings.HasPrefix(resp.message, "Played: "))

	// same seed, same start
	_, err = sc.execute("new 7")
	is.NoErr(err)
	is.Equal(sc.game.Board(), first)

	_, err = sc.execute("step zero")
	is.True(err != nil)
	_, err = sc.execute("new abc")
	is.True(err != nil)
}

func TestEval(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	_, err := sc.execute("setboard 2 0 0 0 0 0 0 0 0 0 0 0 0 0 0 4")
	is.NoErr(err)
	resp, err := sc.execute("eval")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Empty:      14"))
	is.True(strings.Contains(resp.message, "Score:      4"))
	is.True(strings.Contains(resp.message, "DepthLimit: 3"))
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, out := testController()
	resp, err := sc.execute("set")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "parallel-search"))

	_, err = sc.execute("set debug true")
	is.True(err != nil)

	resp, err = sc.execute("set search-log true")
	is.NoErr(err)
	is.Equal(resp.message, "set search-log to true")
	is.True(sc.config.GetBool(config.ConfigSearchLog))

	_, err = sc.execute("setboard 2 2 0 0 0 0 0 0 0 0 0 0 0 0 0 0")
	is.NoErr(err)
	_, err = sc.execute("best")
	is.NoErr(err)
	is.True(strings.Contains(out.String(), "Selected bestmove:"))

	resp, err = sc.execute("set seed")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "seed: "))
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	dir := t.TempDir()
	report := filepath.Join(dir, "report.yaml")
	sc.config.Set(config.ConfigAutoplayReport, report)
	resp, err := sc.execute("autoplay 2 2 -file " + filepath.Join(dir, "turns.txt"))
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Games: 2"))

	dat, err := os.ReadFile(report)
	is.NoErr(err)
	is.True(strings.Contains(string(dat), "games: 2"))
	_, err = os.Stat(filepath.Join(dir, "turns.txt"))
	is.NoErr(err)
}

func TestAutoplayNegativeCount(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	out := filepath.Join(t.TempDir(), "turns.txt")
	_, err := sc.execute("autoplay -1 1 -file " + out)
	is.True(errors.Is(err, automatic.ErrBadGameCount))
	_, err = os.Stat(out)
	is.True(os.IsNotExist(err))
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	resp, err := sc.execute("help")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "setboard"))

	resp, err = sc.execute("help autoplay")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "max-turns"))

	resp, err = sc.execute("help nothing")
	is.NoErr(err)
	is.Equal(resp.message, "There is no help text for the topic nothing")

	resp, err = sc.execute("frobnicate")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "not recognized"))

	_, err = sc.execute("exit")
	is.Equal(err, errQuit)
}
