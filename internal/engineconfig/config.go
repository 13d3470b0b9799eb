// Package engineconfig loads the small set of engine-wide tuning knobs that
// sit outside any single search (transposition table sizing, the
// aspiration window's starting delta, the time control safety factor),
// the way a broader engine surface reads operator-tunable constants from
// viper rather than hardcoding them, grounded on domino14-macondo's use of
// github.com/spf13/viper for its config surface.
package engineconfig

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the tuning knobs. GoParameters (time, depth, movestogo) are
// deliberately not here: those are per-search and arrive from the front
// end, not engine-wide configuration.
type Config struct {
	// TTMemoryFraction is the share of total system memory the
	// transposition table is sized against.
	TTMemoryFraction float64

	// AspirationInitDelta is the starting half-width (centipawns) of the
	// iterative-deepening aspiration window.
	AspirationInitDelta int

	// SafetyFactor shrinks the computed per-move time budget.
	SafetyFactor float64
}

// Load reads configPath (if non-empty) plus ZUGZWANG_-prefixed environment
// variables over a set of sensible defaults, so a config file or env
// override is optional rather than required.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetDefault("tt_memory_fraction", 0.25)
	v.SetDefault("aspiration_init_delta", 25)
	v.SetDefault("safety_factor", 0.8)

	v.SetEnvPrefix("zugzwang")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
		log.Info().Str("path", configPath).Msg("loaded engine config")
	}

	return Config{
		TTMemoryFraction:    v.GetFloat64("tt_memory_fraction"),
		AspirationInitDelta: v.GetInt("aspiration_init_delta"),
		SafetyFactor:        v.GetFloat64("safety_factor"),
	}, nil
}
