// Package board contains the packed 64-bit representation of a 2048 board.
// Each of the 16 cells takes 4 bits and holds a rank: 0 for an empty cell,
// r > 0 for a tile worth 2^r. Cell 0 is the top-left cell and occupies the
// least significant nibble; cells are laid out row-major.
package board

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Board is a packed 4x4 grid. Boards are values; every operation returns
// a new board.
type Board uint64

// Row is one 16-bit row (or, after a transpose, one column) of a board.
type Row uint16

const (
	Dim      = 4
	NumCells = Dim * Dim
	// MaxRank is the largest rank a cell can hold (2^15 = 32768).
	MaxRank = 0xF

	RowMask Board = 0xFFFF
	ColMask Board = 0x000F000F000F000F
)

var (
	ErrBadTileValue = errors.New("tile value must be 0 or a power of two between 2 and 32768")
	ErrBadCellCount = errors.New("a board needs exactly 16 cells")
)

// Direction is one of the four moves.
type Direction int

const (
	Up    Direction = 0
	Down  Direction = 1
	Left  Direction = 2
	Right Direction = 3

	// NoMove is returned by move selection when no direction changes the
	// board, i.e. the game is over.
	NoMove Direction = -1
)

// Directions lists the moves in enumeration order. Ties during move
// selection go to the earliest direction in this list.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// ParseDirection accepts a direction name or its first letter.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return NoMove, fmt.Errorf("unknown direction %q", s)
}

// Transpose swaps rows and columns.
func Transpose(x Board) Board {
	a1 := x & 0xF0F00F0FF0F00F0F
	a2 := x & 0x0000F0F00000F0F0
	a3 := x & 0x0F0F00000F0F0000
	a := a1 | (a2 << 12) | (a3 >> 12)
	b1 := a & 0xFF00FF0000FF00FF
	b2 := a & 0x00FF00FF00000000
	b3 := a & 0x00000000FF00FF00
	return b1 | (b2 >> 24) | (b3 << 24)
}

// CountEmpty counts the cells with rank 0. Each nibble is folded down to a
// single flag bit, and the flags are then summed in place.
func CountEmpty(x Board) int {
	// The nibble sum below wraps to 0 for 16 empty cells.
	if x == 0 {
		return NumCells
	}
	x |= (x >> 2) & 0x3333333333333333
	x |= x >> 1
	x = ^x & 0x1111111111111111
	x += x >> 32
	x += x >> 16
	x += x >> 8
	x += x >> 4
	return int(x & 0xf)
}

// CountNonEmpty counts the cells holding a tile.
func CountNonEmpty(x Board) int {
	return NumCells - CountEmpty(x)
}

// ReverseRow reverses the order of the 4 cells in a row.
func ReverseRow(r Row) Row {
	return (r >> 12) | ((r >> 4) & 0x00F0) | ((r << 4) & 0x0F00) | (r << 12)
}

// UnpackCol spreads a row into the first column of a board.
func UnpackCol(r Row) Board {
	tmp := Board(r)
	return (tmp | (tmp << 12) | (tmp << 24) | (tmp << 36)) & ColMask
}

// Row returns row i (0 is the top row).
func (b Board) Row(i int) Row {
	return Row((b >> (16 * uint(i))) & RowMask)
}

// Rank returns the rank stored in cell i.
func (b Board) Rank(i int) uint8 {
	return uint8((b >> (4 * uint(i))) & 0xf)
}

// WithRank returns a copy of b with cell i set to rank.
func (b Board) WithRank(i int, rank uint8) Board {
	shift := 4 * uint(i)
	return (b &^ (0xf << shift)) | (Board(rank&0xf) << shift)
}

// RankSet has bit r set for every rank r present on the board. Bit 0 is set
// when the board has at least one empty cell.
func RankSet(b Board) uint16 {
	var bitset uint16
	for i := 0; i < NumCells; i++ {
		bitset |= 1 << (b & 0xf)
		b >>= 4
	}
	return bitset
}

// MaxRankOf returns the largest rank on the board.
func MaxRankOf(b Board) uint8 {
	var m uint8
	for ; b != 0; b >>= 4 {
		if r := uint8(b & 0xf); r > m {
			m = r
		}
	}
	return m
}

// DistinctTiles counts the distinct non-empty ranks on the board.
func DistinctTiles(b Board) int {
	return bits.OnesCount16(RankSet(b) >> 1)
}

// FromRanks packs 16 ranks (row-major) into a board.
func FromRanks(ranks [NumCells]uint8) Board {
	var b Board
	for i, r := range ranks {
		b |= Board(r&0xf) << (4 * uint(i))
	}
	return b
}

// FromValues packs 16 tile values (0 for empty) into a board.
func FromValues(values [NumCells]int) (Board, error) {
	var ranks [NumCells]uint8
	for i, v := range values {
		r, err := rankOf(v)
		if err != nil {
			return 0, fmt.Errorf("cell %d: %w", i, err)
		}
		ranks[i] = r
	}
	return FromRanks(ranks), nil
}

func rankOf(v int) (uint8, error) {
	if v == 0 {
		return 0, nil
	}
	if v < 2 || v > 1<<MaxRank || bits.OnesCount(uint(v)) != 1 {
		return 0, ErrBadTileValue
	}
	return uint8(bits.TrailingZeros(uint(v))), nil
}

// Ranks unpacks the board into 16 ranks.
func (b Board) Ranks() [NumCells]uint8 {
	var ranks [NumCells]uint8
	for i := range ranks {
		ranks[i] = b.Rank(i)
	}
	return ranks
}

// Values unpacks the board into 16 tile values.
func (b Board) Values() [NumCells]int {
	var values [NumCells]int
	for i := range values {
		if r := b.Rank(i); r != 0 {
			values[i] = 1 << r
		}
	}
	return values
}

// Parse reads 16 tile values separated by whitespace, commas or slashes,
// e.g. "2 0 0 4 / 0 0 0 0 / 0 0 0 0 / 0 0 0 2".
func Parse(s string) (Board, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '\t' || r == '\n' || r == '|'
	})
	if len(fields) != NumCells {
		return 0, fmt.Errorf("%w: got %d", ErrBadCellCount, len(fields))
	}
	var values [NumCells]int
	for i, f := range fields {
		if f == "." || f == "-" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("cell %d: %w", i, err)
		}
		values[i] = v
	}
	return FromValues(values)
}

// ToDisplayText renders the board as a bordered grid.
func (b Board) ToDisplayText() string {
	var sb strings.Builder
	sep := strings.Repeat("-", Dim*7+1) + "\n"
	sb.WriteString(sep)
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			r := b.Rank(i*Dim + j)
			if r == 0 {
				sb.WriteString("|      ")
			} else {
				fmt.Fprintf(&sb, "|%6d", 1<<r)
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(sep)
	return sb.String()
}

func (b Board) String() string {
	return fmt.Sprintf("%016x", uint64(b))
}
