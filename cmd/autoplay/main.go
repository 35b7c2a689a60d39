// Command autoplay runs a batch of engine-played games without the shell
// and prints a summary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/automatic"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/rowtable"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	rowtable.Initialize()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := automatic.StartAutoplay(ctx, cfg, cfg.GetInt(config.ConfigGames),
		cfg.GetInt(config.ConfigThreads), cfg.GetString(config.ConfigAutoplayOutput))
	if err != nil {
		log.Error().Err(err).Msg("autoplay-failed")
		return
	}
	summary := automatic.Summarize(results)
	fmt.Print(summary.String())
	if err := summary.WriteHistogram(os.Stdout); err != nil {
		log.Error().Err(err).Msg("histogram-failed")
	}
	if reportFile := cfg.GetString(config.ConfigAutoplayReport); reportFile != "" {
		out, err := summary.YAML()
		if err != nil {
			log.Error().Err(err).Msg("report-failed")
			return
		}
		if err := os.WriteFile(reportFile, out, 0o644); err != nil {
			log.Error().Err(err).Msg("report-failed")
			return
		}
		log.Info().Str("file", reportFile).Msg("wrote-report")
	}
}
