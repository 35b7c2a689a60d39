package config

import (
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug          = "debug"
	ConfigSeed           = "seed"
	ConfigThreads        = "threads"
	ConfigGames          = "games"
	ConfigParallelSearch = "parallel-search"
	ConfigSearchLog      = "search-log"
	ConfigAutoplayOutput = "autoplay-output"
	ConfigAutoplayReport = "autoplay-report"
	ConfigMaxTurns       = "max-turns"
	ConfigCPUProfile     = "cpu-profile"
	ConfigMemProfile     = "mem-profile"
)

// Config wraps viper. Values come from flags, then TWENTY48_* environment
// variables, then defaults.
type Config struct {
	*viper.Viper
	args []string
}

func defaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigSeed, uint64(0))
	v.SetDefault(ConfigThreads, runtime.NumCPU())
	v.SetDefault(ConfigGames, 10)
	v.SetDefault(ConfigParallelSearch, true)
	v.SetDefault(ConfigSearchLog, false)
	v.SetDefault(ConfigAutoplayOutput, "/tmp/twenty48_autoplay.txt")
	v.SetDefault(ConfigAutoplayReport, "")
	v.SetDefault(ConfigMaxTurns, 0)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
}

// DefaultConfig returns a config holding only the defaults. It is what the
// tests use.
func DefaultConfig() *Config {
	v := viper.New()
	defaults(v)
	return &Config{Viper: v}
}

// Load parses command-line flags and binds them, together with the
// environment, into the config. Arguments that are not flags are kept and
// returned by Args.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	defaults(c.Viper)

	fs := pflag.NewFlagSet("twenty48", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "turn on debug logging")
	fs.Uint64(ConfigSeed, 0, "seed for tile placement; 0 draws from system entropy")
	fs.Int(ConfigThreads, runtime.NumCPU(), "number of games autoplay runs at once")
	fs.Int(ConfigGames, 10, "number of games to autoplay")
	fs.Bool(ConfigParallelSearch, true, "search the four top-level moves concurrently")
	fs.Bool(ConfigSearchLog, false, "print per-move search diagnostics to stdout")
	fs.String(ConfigAutoplayOutput, "/tmp/twenty48_autoplay.txt", "per-turn autoplay log")
	fs.String(ConfigAutoplayReport, "", "write a YAML summary of the autoplay run here")
	fs.Int(ConfigMaxTurns, 0, "stop autoplayed games after this many turns; 0 plays until stuck")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.String(ConfigMemProfile, "", "write a heap profile here on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix("twenty48")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return c.BindPFlags(fs)
}

// Args returns the non-flag arguments given to Load.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings is the config as a plain map, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
