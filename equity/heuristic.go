// Package equity scores packed boards: the game score and the heuristic
// value used by the search horizon.
package equity

import (
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/rowtable"
)

// Evaluator assigns a static value to a board.
type Evaluator interface {
	Evaluate(b board.Board) float64
}

// TableEvaluator evaluates boards with the precomputed row heuristic table.
type TableEvaluator struct{}

func (TableEvaluator) Evaluate(b board.Board) float64 {
	return Heuristic(b)
}

func heurHelper(b board.Board) float64 {
	return rowtable.Heuristic(b.Row(0)) + rowtable.Heuristic(b.Row(1)) +
		rowtable.Heuristic(b.Row(2)) + rowtable.Heuristic(b.Row(3))
}

// Heuristic sums the row heuristic over the rows of b and the rows of its
// transpose, so both horizontal and vertical structure count.
func Heuristic(b board.Board) float64 {
	rowtable.MustBeInitialized()
	return heurHelper(b) + heurHelper(board.Transpose(b))
}

// Score is the game's score for b. It does not depend on direction, so only
// the rows are summed.
func Score(b board.Board) int {
	rowtable.MustBeInitialized()
	return int(rowtable.Score(b.Row(0)) + rowtable.Score(b.Row(1)) +
		rowtable.Score(b.Row(2)) + rowtable.Score(b.Row(3)))
}
