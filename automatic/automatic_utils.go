package automatic

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/twenty48/config"
)

var (
	GamesPlayed *expvar.Int
	IsPlaying   *expvar.Int
)

var (
	ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")
	ErrBadGameCount   = errors.New("number of games must not be negative")
)

const logHeader = "gameID,turn,direction,value,score,maxtile\n"

func init() {
	GamesPlayed = expvar.NewInt("gamesPlayed")
	IsPlaying = expvar.NewInt("isPlaying")
}

// StartAutoplay plays numGames games across threads runners and returns the
// results of the games that finished. Cancelling ctx stops new games from
// being queued; games in progress run to the end. Per-turn lines are
// written to outputFilename unless it is empty.
func StartAutoplay(ctx context.Context, cfg *config.Config, numGames, threads int,
	outputFilename string) ([]GameResult, error) {

	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	if numGames < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadGameCount, numGames)
	}
	if threads < 1 {
		threads = 1
	}

	var logChan chan string
	logDone := make(chan struct{})
	if outputFilename != "" {
		logfile, err := os.Create(outputFilename)
		if err != nil {
			return nil, err
		}
		logChan = make(chan string, 100)
		go func() {
			defer close(logDone)
			defer logfile.Close()
			logfile.WriteString(logHeader)
			for msg := range logChan {
				logfile.WriteString(msg)
			}
			log.Debug().Str("file", outputFilename).Msg("turn-logger-exiting")
		}()
	} else {
		close(logDone)
	}

	log.Info().Int("games", numGames).Int("threads", threads).Msg("starting-autoplay")
	GamesPlayed.Set(0)

	baseSeed := cfg.GetUint64(config.ConfigSeed)
	results := make([]GameResult, numGames)
	jobs := make(chan int, 100)

	g := errgroup.Group{}
	for t := 0; t < threads; t++ {
		g.Go(func() error {
			r := NewGameRunner(logChan, cfg)
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for idx := range jobs {
				r.Init(GameSeed(baseSeed, idx))
				results[idx] = r.PlayFullGame()
				GamesPlayed.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < numGames; i++ {
			select {
			case <-ctx.Done():
				log.Info().Int("queued", i).Msg("got-stop-signal")
				return nil
			case jobs <- i:
			}
		}
		log.Debug().Msg("finished-queueing-games")
		return nil
	})

	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	<-logDone
	log.Info().Int64("played", GamesPlayed.Value()).Msg("autoplay-finished")

	return lo.Filter(results, func(r GameResult, _ int) bool {
		return r.GameID != ""
	}), err
}
