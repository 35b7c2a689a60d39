package automatic

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/twenty48/stats"
)

const (
	histogramBins  = 10
	histogramWidth = 40
	confidencePct  = 95
)

// Summary aggregates a batch of autoplayed games.
type Summary struct {
	Games      int         `yaml:"games"`
	MeanScore  float64     `yaml:"mean_score"`
	StdevScore float64     `yaml:"stdev_score"`
	ScoreCI95  [2]float64  `yaml:"score_ci95,flow"`
	MinScore   float64     `yaml:"min_score"`
	MaxScore   float64     `yaml:"max_score"`
	MeanTurns  float64     `yaml:"mean_turns"`
	MaxTiles   map[int]int `yaml:"max_tiles"`
	// Reached maps a tile to the fraction of games whose largest tile was
	// at least that big.
	Reached map[int]float64 `yaml:"reached"`

	scores []float64
}

// Summarize computes score and max-tile statistics over results.
func Summarize(results []GameResult) *Summary {
	var score, turns stats.Statistic
	for _, r := range results {
		score.Push(float64(r.Score))
		turns.Push(float64(r.Turns))
	}
	s := &Summary{
		Games:      len(results),
		MeanScore:  score.Mean(),
		StdevScore: score.Stdev(),
		MinScore:   score.Min(),
		MaxScore:   score.Max(),
		MeanTurns:  turns.Mean(),
		MaxTiles: lo.CountValuesBy(results, func(r GameResult) int {
			return r.MaxTile
		}),
		Reached: map[int]float64{},
		scores: lo.Map(results, func(r GameResult, _ int) float64 {
			return float64(r.Score)
		}),
	}
	s.ScoreCI95[0], s.ScoreCI95[1] = score.ConfidenceInterval(confidencePct)

	for tile := range s.MaxTiles {
		atLeast := lo.CountBy(results, func(r GameResult) bool {
			return r.MaxTile >= tile
		})
		s.Reached[tile] = float64(atLeast) / float64(len(results))
	}
	return s
}

// YAML renders the summary as a YAML document.
func (s *Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// WriteHistogram draws a text histogram of the game scores.
func (s *Summary) WriteHistogram(w io.Writer) error {
	if len(s.scores) == 0 {
		return nil
	}
	hist := histogram.Hist(histogramBins, s.scores)
	return histogram.Fprint(w, hist, histogram.Linear(histogramWidth))
}

func (s *Summary) String() string {
	var ss strings.Builder
	fmt.Fprintf(&ss, "Games: %d\n", s.Games)
	fmt.Fprintf(&ss, "Score: %.1f ± %.1f (%d%% CI %.1f-%.1f), min %.0f, max %.0f\n",
		s.MeanScore, s.StdevScore, confidencePct, s.ScoreCI95[0], s.ScoreCI95[1],
		s.MinScore, s.MaxScore)
	fmt.Fprintf(&ss, "Turns: %.1f avg\n", s.MeanTurns)
	fmt.Fprintf(&ss, "%-8s%-8s%-10s\n", "Tile", "Count", "Reached %")
	tiles := lo.Keys(s.MaxTiles)
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))
	for _, t := range tiles {
		fmt.Fprintf(&ss, "%-8d%-8d%-10.2f\n", t, s.MaxTiles[t], 100*s.Reached[t])
	}
	return ss.String()
}
