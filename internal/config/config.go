// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config holds the run configuration of the fredy command.
//
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Sampling backends.
//
const (
	BackendNone      = ""
	BackendReference = "reference"
	BackendCircuit   = "circuit"
)

// Shot reductions.
//
const (
	ReduceFirst    = "first"
	ReduceMajority = "majority"
)

// Config is the run configuration. Zero values of optional fields mean
// "use the default".
//
type Config struct {
	// Backend selects a sampling backend. With BackendNone, only the
	// reference engine runs.
	Backend  string  `yaml:"backend"`
	Shots    int     `yaml:"shots"`
	Workers  int     `yaml:"workers"`
	Parallel int     `yaml:"parallel"`
	Noise    float64 `yaml:"noise"`
	Seed     int64   `yaml:"seed"`
	Reduce   string  `yaml:"reduce"`
	// Input resolves optional slots instead of prompting.
	Input   *string `yaml:"input"`
	Debug   bool    `yaml:"debug"`
	Draw    bool    `yaml:"draw"`
	Colour  bool    `yaml:"colour"`
	Metrics bool    `yaml:"metrics"`
}

// Default returns the default configuration.
//
func Default() Config {
	return Config{
		Shots:  10,
		Reduce: ReduceFirst,
	}
}

// Load reads a YAML configuration file on top of the defaults.
//
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Decode decodes a YAML configuration on top of the defaults. Unknown keys
// are rejected.
//
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
//
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendReference, BackendCircuit:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Reduce {
	case ReduceFirst, ReduceMajority:
	default:
		return errors.Errorf("unknown reduction %q", c.Reduce)
	}
	if c.Shots < 1 {
		return errors.Errorf("shots must be at least 1, got %d", c.Shots)
	}
	if c.Noise < 0 || c.Noise > 1 {
		return errors.Errorf("noise %v outside [0, 1]", c.Noise)
	}
	if c.Noise > 0 && c.Backend != BackendCircuit {
		return errors.New("noise requires the circuit backend")
	}
	return nil
}

// Ideal returns true if the configured backend is noiseless.
//
func (c *Config) Ideal() bool { return c.Noise == 0 }
