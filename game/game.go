// Package game drives a single 2048 game: it applies chosen moves, drops in
// random tiles and tracks the score. How a move is chosen is up to the
// caller; a Game doesn't care whether a person or the search picks it.
package game

import (
	"errors"

	"github.com/google/uuid"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/mechanics"
)

var (
	ErrIllegalMove = errors.New("move does not change the board")
	ErrGameOver    = errors.New("game is over")
)

// FourTilePenalty is taken off the score for every 4 that spawns, since
// the board score counts it as if it had been built from two 2s.
const FourTilePenalty = 4

type Game struct {
	uid          string
	board        board.Board
	rng          *Randomizer
	turnnum      int
	scorePenalty int
	history      []board.Direction
}

// NewGame starts a game on a fresh two-tile board.
func NewGame(rng *Randomizer) *Game {
	return NewGameFromBoard(rng.InitialBoard(), rng)
}

// NewGameFromBoard continues a game from an existing position.
func NewGameFromBoard(b board.Board, rng *Randomizer) *Game {
	return &Game{
		uid:   uuid.NewString(),
		board: b,
		rng:   rng,
	}
}

func (g *Game) Uid() string {
	return g.uid
}

func (g *Game) Board() board.Board {
	return g.board
}

// Turn is the number of moves played so far.
func (g *Game) Turn() int {
	return g.turnnum
}

// History lists the moves played, oldest first.
func (g *Game) History() []board.Direction {
	return g.history
}

// Score is the board score minus the penalty for spawned 4s.
func (g *Game) Score() int {
	return equity.Score(g.board) - g.scorePenalty
}

// MaxTile is the value of the largest tile on the board.
func (g *Game) MaxTile() int {
	r := board.MaxRankOf(g.board)
	if r == 0 {
		return 0
	}
	return 1 << r
}

// Playing is false once no move changes the board.
func (g *Game) Playing() bool {
	return mechanics.CanMove(g.board)
}

// PlayMove applies dir and then drops a random tile on the board.
func (g *Game) PlayMove(dir board.Direction) error {
	if !g.Playing() {
		return ErrGameOver
	}
	newBoard := mechanics.ExecuteMove(g.board, dir)
	if newBoard == g.board {
		return ErrIllegalMove
	}
	tile := g.rng.DrawTile()
	if tile == 2 {
		g.scorePenalty += FourTilePenalty
	}
	g.board = g.rng.InsertTileRand(newBoard, tile)
	g.turnnum++
	g.history = append(g.history, dir)
	return nil
}
