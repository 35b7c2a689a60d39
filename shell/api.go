package shell

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/twenty48/automatic"
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/expectimax"
	"github.com/domino14/twenty48/game"
)

// settable lists the keys the set command may change.
var settable = []string{
	config.ConfigSeed,
	config.ConfigThreads,
	config.ConfigGames,
	config.ConfigParallelSearch,
	config.ConfigSearchLog,
	config.ConfigMaxTurns,
	config.ConfigAutoplayOutput,
	config.ConfigAutoplayReport,
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage()
	}
	return usageTopic(cmd.args[0])
}

func (sc *ShellController) randomizer(seed uint64) *game.Randomizer {
	if seed == 0 {
		return game.NewRandomizer()
	}
	return game.NewSeededRandomizer(seed)
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	seed := sc.config.GetUint64(config.ConfigSeed)
	if len(cmd.args) > 0 {
		var err error
		seed, err = strconv.ParseUint(cmd.args[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad seed: %w", err)
		}
	}
	sc.game = game.NewGame(sc.randomizer(seed))
	log.Debug().Str("game", sc.game.Uid()).Uint64("seed", seed).Msg("new-game")
	return sc.show(cmd)
}

func (sc *ShellController) setBoard(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, board.ErrBadCellCount
	}
	b, err := board.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.game = game.NewGameFromBoard(b, sc.randomizer(sc.config.GetUint64(config.ConfigSeed)))
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var ss strings.Builder
	ss.WriteString(sc.game.Board().ToDisplayText())
	fmt.Fprintf(&ss, "Turn %d  Score %d  Max tile %d", sc.game.Turn(), sc.game.Score(),
		sc.game.MaxTile())
	if !sc.game.Playing() {
		ss.WriteString("  (game over)")
	}
	return msg(ss.String()), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	sol := sc.solver.Solve(sc.game.Board())
	var ss strings.Builder
	fmt.Fprintf(&ss, "%-8s%-8s%-16s%-12s\n", "Move", "Legal", "Value", "Evaluated")
	for _, r := range sol.Results {
		fmt.Fprintf(&ss, "%-8v%-8v%-16.4f%-12d\n", r.Direction, r.Legal, r.Value, r.MovesEvaled)
	}
	if sol.Move == board.NoMove {
		ss.WriteString("No legal move; the game is over.")
	} else {
		fmt.Fprintf(&ss, "Best: %v (depth limit %d, %v)", sol.Move,
			sol.Results[sol.Move].DepthLimit, sol.Elapsed)
	}
	return msg(ss.String()), nil
}

func (sc *ShellController) step(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad turn count %q", cmd.args[0])
		}
	}
	played := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dir := sc.solver.ChooseBestMove(sc.game.Board())
		if dir == board.NoMove {
			break
		}
		if err := sc.game.PlayMove(dir); err != nil {
			return nil, err
		}
		played = append(played, dir.String())
	}
	resp, err := sc.show(cmd)
	if err != nil {
		return nil, err
	}
	if len(played) > 0 {
		resp.message = "Played: " + strings.Join(played, " ") + "\n" + resp.message
	}
	return resp, nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	b := sc.game.Board()
	var ss strings.Builder
	fmt.Fprintf(&ss, "Board:      %v\n", b)
	fmt.Fprintf(&ss, "Heuristic:  %.2f\n", equity.Heuristic(b))
	fmt.Fprintf(&ss, "Score:      %d\n", equity.Score(b))
	fmt.Fprintf(&ss, "Empty:      %d\n", board.CountEmpty(b))
	fmt.Fprintf(&ss, "Distinct:   %d\n", board.DistinctTiles(b))
	fmt.Fprintf(&ss, "DepthLimit: %d", expectimax.DepthLimit(b))
	return msg(ss.String()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	numGames := sc.config.GetInt(config.ConfigGames)
	threads := sc.config.GetInt(config.ConfigThreads)
	var err error
	if len(cmd.args) > 0 {
		if numGames, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, fmt.Errorf("bad game count: %w", err)
		}
	}
	if len(cmd.args) > 1 {
		if threads, err = strconv.Atoi(cmd.args[1]); err != nil {
			return nil, fmt.Errorf("bad thread count: %w", err)
		}
	}
	outFile := sc.config.GetString(config.ConfigAutoplayOutput)
	if f, ok := cmd.options["file"]; ok {
		outFile = f
	}

	// Ctrl-C stops queueing new games.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, err := automatic.StartAutoplay(ctx, sc.config, numGames, threads, outFile)
	if err != nil {
		return nil, err
	}
	summary := automatic.Summarize(results)

	var ss strings.Builder
	ss.WriteString(summary.String())
	if err := summary.WriteHistogram(&ss); err != nil {
		return nil, err
	}
	if reportFile := sc.config.GetString(config.ConfigAutoplayReport); reportFile != "" {
		out, err := summary.YAML()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(reportFile, out, 0o644); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(&ss, "Report written to %s\n", reportFile)
	}
	return msg(strings.TrimRight(ss.String(), "\n")), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		settings := sc.config.SanitizedSettings()
		keys := lo.Keys(settings)
		sort.Strings(keys)
		var ss strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&ss, "%-18s%v\n", k, settings[k])
		}
		return msg(strings.TrimRight(ss.String(), "\n")), nil
	}
	key := cmd.args[0]
	if !lo.Contains(settable, key) {
		return nil, fmt.Errorf("%s cannot be set from the shell", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	sc.config.Set(key, cmd.args[1])
	sc.applySettings()
	return msg("set " + key + " to " + cmd.args[1]), nil
}
