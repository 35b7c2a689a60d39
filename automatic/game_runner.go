// Package automatic lets the engine play whole games by itself, one or many
// at a time, and collects what happened.
package automatic

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/expectimax"
	"github.com/domino14/twenty48/game"
)

// GameResult is the outcome of one finished game.
type GameResult struct {
	GameID  string        `yaml:"game_id"`
	Seed    uint64        `yaml:"seed"`
	Turns   int           `yaml:"turns"`
	Score   int           `yaml:"score"`
	MaxTile int           `yaml:"max_tile"`
	Elapsed time.Duration `yaml:"elapsed"`
}

// GameRunner plays games with the expectimax solver choosing every move.
type GameRunner struct {
	game    *game.Game
	solver  *expectimax.Solver
	config  *config.Config
	seed    uint64
	logchan chan string
	// maxTurns stops a game early when positive.
	maxTurns int
}

// NewGameRunner creates a runner. Per-turn CSV lines go to logchan when it
// is not nil.
func NewGameRunner(logchan chan string, cfg *config.Config) *GameRunner {
	r := &GameRunner{logchan: logchan, config: cfg, maxTurns: cfg.GetInt(config.ConfigMaxTurns)}
	r.solver = expectimax.NewSolver()
	r.solver.SetParallel(cfg.GetBool(config.ConfigParallelSearch))
	if cfg.GetBool(config.ConfigSearchLog) {
		r.solver.SetLogStream(os.Stdout)
	}
	return r
}

// SetMaxTurns caps the length of each game; 0 means play until stuck.
func (r *GameRunner) SetMaxTurns(n int) {
	r.maxTurns = n
}

// Init starts a fresh game. A zero seed draws tiles from system entropy.
func (r *GameRunner) Init(seed uint64) {
	var rng *game.Randomizer
	if seed == 0 {
		rng = game.NewRandomizer()
	} else {
		rng = game.NewSeededRandomizer(seed)
	}
	r.seed = seed
	r.game = game.NewGame(rng)
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

// PlayBestTurn searches the current position and plays the chosen move. It
// returns false once the game is over.
func (r *GameRunner) PlayBestTurn() bool {
	sol := r.solver.Solve(r.game.Board())
	if sol.Move == board.NoMove {
		return false
	}
	if err := r.game.PlayMove(sol.Move); err != nil {
		// The solver only picks moves that change the board.
		log.Err(err).Str("board", r.game.Board().String()).Msg("solver-picked-bad-move")
		return false
	}
	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%v,%v,%v,%.4f,%v,%v\n",
			r.game.Uid(),
			r.game.Turn(),
			sol.Move,
			sol.Value,
			r.game.Score(),
			r.game.MaxTile())
	}
	return true
}

// PlayFullGame plays the current game out and reports on it.
func (r *GameRunner) PlayFullGame() GameResult {
	st := time.Now()
	for r.PlayBestTurn() {
		if r.maxTurns > 0 && r.game.Turn() >= r.maxTurns {
			break
		}
	}
	res := GameResult{
		GameID:  r.game.Uid(),
		Seed:    r.seed,
		Turns:   r.game.Turn(),
		Score:   r.game.Score(),
		MaxTile: r.game.MaxTile(),
		Elapsed: time.Since(st),
	}
	log.Debug().Str("game", res.GameID).Int("turns", res.Turns).Int("score", res.Score).
		Int("maxtile", res.MaxTile).Dur("elapsed", res.Elapsed).Msg("game-over")
	return res
}
