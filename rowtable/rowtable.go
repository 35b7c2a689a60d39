// Package rowtable precomputes, for every possible 16-bit row, the result of
// sliding that row left and right, its score, and its heuristic value.
// The tables are built once by Initialize and are read-only afterwards, so
// any number of searches may share them.
package rowtable

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/board"
)

// Heuristic weights. These are fixed.
const (
	LostPenalty        = 200000.0
	MonotonicityPower  = 4.0
	MonotonicityWeight = 47.0
	SumPower           = 3.5
	SumWeight          = 11.0
	MergesWeight       = 700.0
	EmptyWeight        = 270.0
)

// TableSize is the number of distinct row patterns.
const TableSize = 1 << 16

var ErrNotInitialized = errors.New("row tables used before rowtable.Initialize")

var (
	// The slide tables store row ^ result so that a move is applied with
	// a single XOR per row.
	rowLeftTable  [TableSize]board.Row
	rowRightTable [TableSize]board.Row
	scoreTable    [TableSize]uint32
	heurTable     [TableSize]float64

	initOnce    sync.Once
	initialized bool
)

// Initialize builds all tables. It must run before any move is executed or
// any board is scored. Calls after the first are no-ops.
func Initialize() {
	initOnce.Do(func() {
		tstart := time.Now()
		for i := 0; i < TableSize; i++ {
			buildRow(board.Row(i))
		}
		initialized = true
		log.Debug().
			Int("rows", TableSize).
			Int("table-bytes", tableBytes()).
			Uint64("total-system-memory-bytes", memory.TotalMemory()).
			Dur("elapsed", time.Since(tstart)).
			Msg("row-tables-initialized")
	})
}

func tableBytes() int {
	return TableSize * (2 + 2 + 4 + 8)
}

// Initialized reports whether Initialize has completed.
func Initialized() bool {
	return initialized
}

// MustBeInitialized panics if the tables have not been built. Searching
// with zero-filled tables would silently produce garbage.
func MustBeInitialized() {
	if !initialized {
		panic(ErrNotInitialized)
	}
}

func unpackLine(row board.Row) [4]uint8 {
	return [4]uint8{
		uint8(row & 0xf),
		uint8((row >> 4) & 0xf),
		uint8((row >> 8) & 0xf),
		uint8((row >> 12) & 0xf),
	}
}

func packLine(line [4]uint8) board.Row {
	return board.Row(line[0]) | board.Row(line[1])<<4 |
		board.Row(line[2])<<8 | board.Row(line[3])<<12
}

func buildRow(row board.Row) {
	line := unpackLine(row)
	scoreTable[row] = lineScore(line)
	heurTable[row] = lineHeuristic(line)

	result := packLine(SlideLeft(line))
	revRow := board.ReverseRow(row)
	revResult := board.ReverseRow(result)
	rowLeftTable[row] = row ^ result
	rowRightTable[revRow] = revRow ^ revResult
}

// SlideLeft slides every tile toward index 0 and merges equal neighbours.
// It is a single pass: a tile produced by a merge does not merge again in
// the same move. Ranks stop at 0xF.
func SlideLeft(line [4]uint8) [4]uint8 {
	for i := 0; i < 3; i++ {
		j := i + 1
		for ; j < 4; j++ {
			if line[j] != 0 {
				break
			}
		}
		if j == 4 {
			break
		}
		if line[i] == 0 {
			line[i] = line[j]
			line[j] = 0
			i--
		} else if line[i] == line[j] {
			if line[i] != board.MaxRank {
				line[i]++
			}
			line[j] = 0
		}
	}
	return line
}

// lineScore is the score a row has accumulated: a tile of rank r >= 2 was
// built by merges worth (r-1) * 2^r in total.
func lineScore(line [4]uint8) uint32 {
	var score uint32
	for _, rank := range line {
		if rank >= 2 {
			score += (uint32(rank) - 1) * (1 << rank)
		}
	}
	return score
}

func lineHeuristic(line [4]uint8) float64 {
	var sum float64
	var empty, merges int
	var prev uint8
	var counter int
	for _, rank := range line {
		sum += math.Pow(float64(rank), SumPower)
		if rank == 0 {
			empty++
			continue
		}
		if prev == rank {
			counter++
		} else if counter > 0 {
			merges += 1 + counter
			counter = 0
		}
		prev = rank
	}
	if counter > 0 {
		merges += 1 + counter
	}

	var monoLeft, monoRight float64
	for i := 1; i < 4; i++ {
		a := math.Pow(float64(line[i-1]), MonotonicityPower)
		b := math.Pow(float64(line[i]), MonotonicityPower)
		if line[i-1] > line[i] {
			monoLeft += a - b
		} else {
			monoRight += b - a
		}
	}

	return LostPenalty +
		EmptyWeight*float64(empty) +
		MergesWeight*float64(merges) -
		MonotonicityWeight*math.Min(monoLeft, monoRight) -
		SumWeight*sum
}

// LeftPatch returns the XOR patch that slides row to the left.
func LeftPatch(row board.Row) board.Row {
	return rowLeftTable[row]
}

// RightPatch returns the XOR patch that slides row to the right.
func RightPatch(row board.Row) board.Row {
	return rowRightTable[row]
}

// Score returns the game score held by the tiles of row.
func Score(row board.Row) uint32 {
	return scoreTable[row]
}

// Heuristic returns the heuristic contribution of row.
func Heuristic(row board.Row) float64 {
	return heurTable[row]
}
