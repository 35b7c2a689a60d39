package expectimax

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/mechanics"
	"github.com/domino14/twenty48/rowtable"
)

// MoveResult is the outcome of searching one top-level move.
type MoveResult struct {
	Direction board.Direction
	// Value is 0 for an illegal move, otherwise the expected heuristic
	// value plus TieBreakEpsilon.
	Value      float64
	Legal      bool
	DepthLimit int

	MovesEvaled uint64
	NoMoves     uint64
	TableHits   uint64
	CacheHits   uint64
	CacheSize   int
	MaxDepth    int
}

func (r MoveResult) String() string {
	return fmt.Sprintf("Move %v: result %f: eval'd %d moves (%d no moves, %d table hits, %d cache hits, %d cache size) (maxdepth=%d)",
		r.Direction, r.Value, r.MovesEvaled, r.NoMoves, r.TableHits, r.CacheHits, r.CacheSize, r.MaxDepth)
}

// Solution is the chosen move together with the results of all four
// top-level searches.
type Solution struct {
	Move    board.Direction
	Value   float64
	Results [4]MoveResult
	Elapsed time.Duration
}

// Solver picks moves. The four top-level moves are searched independently,
// in parallel by default; each search owns its transposition table and
// counters and shares only the read-only row tables.
type Solver struct {
	parallel  bool
	evaluator equity.Evaluator
	logStream io.Writer
}

func NewSolver() *Solver {
	return &Solver{
		parallel:  true,
		evaluator: equity.TableEvaluator{},
	}
}

// SetParallel switches between searching the four top-level moves
// concurrently and one after the other. Results are identical either way.
func (s *Solver) SetParallel(p bool) {
	s.parallel = p
}

// SetLogStream sets a writer that receives a human-readable line for every
// top-level move and for the selection. The format is not stable.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// ScoreTopLevelMove searches the board that results from playing dir on b.
// The depth limit is derived from b, the board before the move.
func (s *Solver) ScoreTopLevelMove(b board.Board, dir board.Direction) MoveResult {
	res := MoveResult{Direction: dir}
	newBoard := mechanics.ExecuteMove(b, dir)
	if newBoard == b {
		return res
	}
	state := newEvalState(DepthLimit(b), s.evaluator)
	res.Legal = true
	res.DepthLimit = state.depthLimit
	res.Value = state.chanceNode(newBoard, 0, 1.0) + TieBreakEpsilon
	res.MovesEvaled = state.movesEvaled
	res.NoMoves = state.noMoves
	res.TableHits = state.tableHits
	res.CacheHits = state.cacheHits
	res.CacheSize = state.ttable.Len()
	res.MaxDepth = state.maxDepth
	return res
}

// Evaluate searches all four top-level moves and waits for all of them.
func (s *Solver) Evaluate(b board.Board) [4]MoveResult {
	rowtable.MustBeInitialized()
	var results [4]MoveResult
	if !s.parallel {
		for i, d := range board.Directions {
			results[i] = s.ScoreTopLevelMove(b, d)
		}
		return results
	}
	g := errgroup.Group{}
	for i, d := range board.Directions {
		i, d := i, d
		g.Go(func() error {
			results[i] = s.ScoreTopLevelMove(b, d)
			return nil
		})
	}
	// The searches cannot fail; Wait is the join point.
	_ = g.Wait()
	return results
}

// Solve evaluates every move and picks the one with the strictly greatest
// value; earlier directions win ties. Move is board.NoMove when no direction
// changes the board.
func (s *Solver) Solve(b board.Board) Solution {
	tstart := time.Now()
	if s.logStream != nil {
		fmt.Fprintf(s.logStream, "Current scores: heur %d, actual %d\n",
			uint32(equity.Heuristic(b)), uint32(equity.Score(b)))
	}
	sol := Solution{Move: board.NoMove}
	sol.Results = s.Evaluate(b)
	for _, r := range sol.Results {
		if r.Value > sol.Value {
			sol.Value = r.Value
			sol.Move = r.Direction
		}
	}
	sol.Elapsed = time.Since(tstart)
	s.report(b, sol)
	return sol
}

// ChooseBestMove returns the direction to play, or board.NoMove if the game
// is over.
func (s *Solver) ChooseBestMove(b board.Board) board.Direction {
	return s.Solve(b).Move
}

func (s *Solver) report(b board.Board, sol Solution) {
	var nodes uint64
	for _, r := range sol.Results {
		nodes += r.MovesEvaled
		log.Debug().
			Str("move", r.Direction.String()).
			Float64("value", r.Value).
			Bool("legal", r.Legal).
			Int("depth-limit", r.DepthLimit).
			Uint64("moves-evaled", r.MovesEvaled).
			Uint64("no-moves", r.NoMoves).
			Uint64("table-hits", r.TableHits).
			Uint64("cache-hits", r.CacheHits).
			Int("cache-size", r.CacheSize).
			Int("max-depth", r.MaxDepth).
			Msg("toplevel-move-evaluated")
	}
	log.Debug().
		Str("board", b.String()).
		Str("selected", sol.Move.String()).
		Float64("value", sol.Value).
		Uint64("nodes", nodes).
		Dur("elapsed", sol.Elapsed).
		Msg("solve-returning")

	if s.logStream == nil {
		return
	}
	for _, r := range sol.Results {
		fmt.Fprintln(s.logStream, r.String())
	}
	fmt.Fprintf(s.logStream, "Selected bestmove: %v, result: %f\n", sol.Move, sol.Value)
}
