// Package config reads tool settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"github.com/eon-protocol/eondos"
)

type Config struct {
	CacheDir         string `env:"EONDOS_CACHE_DIR"`
	Steps            int    `env:"EONDOS_STEPS" envDefault:"3"`
	Accelerator      string `env:"EONDOS_ACCELERATOR" envDefault:"cpu"`
	Debug            bool   `env:"EONDOS_DEBUG"`
	CompressionLevel int    `env:"EONDOS_COMPRESSION_LEVEL" envDefault:"3"`
}

// Load parses the process environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.normalize()
}

// LoadFrom parses environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.normalize()
}

func (me *Config) normalize() error {
	if me.CacheDir == "" {
		me.CacheDir = eondos.DATA_CACHE_DIR
	}
	if me.Steps < 1 {
		return fmt.Errorf("config: EONDOS_STEPS must be at least 1, got %d", me.Steps)
	}
	if me.CompressionLevel < 1 || me.CompressionLevel > 22 {
		return fmt.Errorf("config: EONDOS_COMPRESSION_LEVEL must be in [1, 22], got %d", me.CompressionLevel)
	}
	if _, err := eondos.ProverOptions(me.Accelerator); err != nil {
		return fmt.Errorf("config: EONDOS_ACCELERATOR: %w", err)
	}
	return nil
}

// ProverOptions returns the prover options of the configured accelerator.
func (me *Config) ProverOptions() []backend.ProverOption {
	opts, _ := eondos.ProverOptions(me.Accelerator)
	return opts
}

// SetupLogger silences gnark's logger unless Debug is set, in which case it logs to
// stderr in console format.
func (me *Config) SetupLogger() {
	if !me.Debug {
		logger.Disable()
		return
	}
	logger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel))
}
