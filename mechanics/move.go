// Package mechanics applies moves to packed boards using the row tables.
package mechanics

import (
	"github.com/samber/lo"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/rowtable"
)

// ExecuteMove returns the board after sliding every tile in direction dir.
// If nothing moves or merges, the input board is returned unchanged, so
// legality is simply ExecuteMove(b, d) != b. It panics if the row tables
// have not been built.
func ExecuteMove(b board.Board, dir board.Direction) board.Board {
	rowtable.MustBeInitialized()
	switch dir {
	case board.Up:
		return moveUp(b)
	case board.Down:
		return moveDown(b)
	case board.Left:
		return moveLeft(b)
	case board.Right:
		return moveRight(b)
	}
	return b
}

func moveLeft(b board.Board) board.Board {
	ret := b
	ret ^= board.Board(rowtable.LeftPatch(b.Row(0)))
	ret ^= board.Board(rowtable.LeftPatch(b.Row(1))) << 16
	ret ^= board.Board(rowtable.LeftPatch(b.Row(2))) << 32
	ret ^= board.Board(rowtable.LeftPatch(b.Row(3))) << 48
	return ret
}

func moveRight(b board.Board) board.Board {
	ret := b
	ret ^= board.Board(rowtable.RightPatch(b.Row(0)))
	ret ^= board.Board(rowtable.RightPatch(b.Row(1))) << 16
	ret ^= board.Board(rowtable.RightPatch(b.Row(2))) << 32
	ret ^= board.Board(rowtable.RightPatch(b.Row(3))) << 48
	return ret
}

// Up and down work on the transposed board, whose rows are the columns;
// each row patch is unpacked back into a column of the original board.
func moveUp(b board.Board) board.Board {
	ret := b
	t := board.Transpose(b)
	ret ^= board.UnpackCol(rowtable.LeftPatch(t.Row(0)))
	ret ^= board.UnpackCol(rowtable.LeftPatch(t.Row(1))) << 4
	ret ^= board.UnpackCol(rowtable.LeftPatch(t.Row(2))) << 8
	ret ^= board.UnpackCol(rowtable.LeftPatch(t.Row(3))) << 12
	return ret
}

func moveDown(b board.Board) board.Board {
	ret := b
	t := board.Transpose(b)
	ret ^= board.UnpackCol(rowtable.RightPatch(t.Row(0)))
	ret ^= board.UnpackCol(rowtable.RightPatch(t.Row(1))) << 4
	ret ^= board.UnpackCol(rowtable.RightPatch(t.Row(2))) << 8
	ret ^= board.UnpackCol(rowtable.RightPatch(t.Row(3))) << 12
	return ret
}

// IsLegal reports whether moving in dir changes the board.
func IsLegal(b board.Board, dir board.Direction) bool {
	return ExecuteMove(b, dir) != b
}

// LegalMoves returns the directions that change the board, in enumeration
// order.
func LegalMoves(b board.Board) []board.Direction {
	return lo.Filter(board.Directions[:], func(d board.Direction, _ int) bool {
		return IsLegal(b, d)
	})
}

// CanMove reports whether any direction changes the board. A board that
// cannot move is a finished game.
func CanMove(b board.Board) bool {
	for _, d := range board.Directions {
		if IsLegal(b, d) {
			return true
		}
	}
	return false
}
