// Package expectimax chooses 2048 moves with a depth-limited expectimax
// search. Player nodes take the best of the four moves; chance nodes average
// over every empty cell receiving a 2 (probability 0.9) or a 4 (0.1).
package expectimax

import (
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/mechanics"
)

const (
	// ProbabilityThreshold stops the search below chance nodes that are
	// reached with less than this probability.
	ProbabilityThreshold = 0.0001
	// CacheDepthLimit is the depth from which chance nodes are no longer
	// cached.
	CacheDepthLimit = 15
	// TieBreakEpsilon is added to every legal top-level move so that it
	// beats the 0 given to illegal moves.
	TieBreakEpsilon = 1e-6
)

type spawn struct {
	rank   board.Board
	weight float64
}

var spawns = [2]spawn{{1, 0.9}, {2, 0.1}}

// EvalState is the bookkeeping for one top-level move evaluation. It is
// created for that evaluation and thrown away afterwards.
type EvalState struct {
	ttable     *TranspositionTable
	evaluator  equity.Evaluator
	depthLimit int

	maxDepth    int
	movesEvaled uint64
	noMoves     uint64
	tableHits   uint64
	cacheHits   uint64
}

func newEvalState(depthLimit int, ev equity.Evaluator) *EvalState {
	return &EvalState{
		ttable:     NewTranspositionTable(),
		evaluator:  ev,
		depthLimit: depthLimit,
	}
}

// chanceNode returns the expected value of b, a board on which a random
// tile is about to appear. depth counts the player moves made since the
// root and cprob is the probability of reaching b.
//
// The player's reply to each tile placement is evaluated inline: the best
// of the four moves, each recursing into the chance node that follows it,
// or 0 if no move is possible.
func (s *EvalState) chanceNode(b board.Board, depth int, cprob float64) float64 {
	if cprob < ProbabilityThreshold || depth >= s.depthLimit {
		if depth > s.maxDepth {
			s.maxDepth = depth
		}
		s.tableHits++
		return s.evaluator.Evaluate(b)
	}
	if depth < CacheDepthLimit {
		if v, ok := s.ttable.lookup(b, depth); ok {
			s.cacheHits++
			return v
		}
	}

	numOpen := board.CountEmpty(b)
	if numOpen == 0 {
		return s.evaluator.Evaluate(b)
	}
	cprob /= float64(numOpen)

	var res float64
	tmp := b
	for shift := uint(0); shift < 64; shift += 4 {
		if tmp&0xf == 0 {
			for _, sp := range spawns {
				placed := b | sp.rank<<shift
				childProb := cprob * sp.weight

				var best float64
				moved := false
				for _, d := range board.Directions {
					s.movesEvaled++
					next := mechanics.ExecuteMove(placed, d)
					if next == placed {
						continue
					}
					moved = true
					if v := s.chanceNode(next, depth+1, childProb); v > best {
						best = v
					}
				}
				if !moved {
					s.noMoves++
				}
				res += best * sp.weight
			}
		}
		tmp >>= 4
	}
	res /= float64(numOpen)

	s.ttable.store(b, depth, res)
	return res
}
