// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides ice configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/ice/clipboard"
	"github.com/kortschak/ice/internal/xdg"
)

// Name is the path of the configuration file relative to the
// user's configuration directory.
var Name = filepath.Join("ice", "config.toml")

// Config is a complete configuration.
type Config struct {
	LogLevel  *slog.Level `json:"log_level,omitempty" toml:"log_level"`
	AddSource *bool       `json:"log_add_source,omitempty" toml:"log_add_source"`

	Clipboard *Clipboard `json:"clipboard,omitempty" toml:"clipboard"`
	History   *History   `json:"history,omitempty" toml:"history"`
	Serve     *Serve     `json:"serve,omitempty" toml:"serve"`

	// Rules is a set of named CEL capability rules.
	Rules map[string]string `json:"rules,omitempty" toml:"rules"`
}

// Clipboard is the clipboard configuration.
type Clipboard struct {
	Strategy string `json:"strategy,omitempty" toml:"strategy"`
	Path     string `json:"path,omitempty" toml:"path"`
	// Timeout is a time.Duration string.
	Timeout string   `json:"timeout,omitempty" toml:"timeout"`
	Copy    []string `json:"copy,omitempty" toml:"copy"`
	Paste   []string `json:"paste,omitempty" toml:"paste"`
	Clear   []string `json:"clear,omitempty" toml:"clear"`
}

// Options returns the clipboard options described by c. A nil
// Clipboard returns the default options.
func (c *Clipboard) Options(log *slog.Logger) (clipboard.Options, error) {
	if c == nil {
		return clipboard.Options{Log: log}, nil
	}
	var timeout time.Duration
	if c.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(c.Timeout)
		if err != nil {
			return clipboard.Options{}, fmt.Errorf("invalid clipboard timeout: %w", err)
		}
	}
	return clipboard.Options{
		Strategy: c.Strategy,
		Path:     c.Path,
		Timeout:  timeout,
		Copy:     c.Copy,
		Paste:    c.Paste,
		Clear:    c.Clear,
		Log:      log,
	}, nil
}

// History is the clipboard history configuration.
type History struct {
	// DSN is a postgres:// URL or a SQLite database path.
	DSN string `json:"dsn,omitempty" toml:"dsn"`
}

// Serve is the RPC daemon configuration.
type Serve struct {
	Network string `json:"network,omitempty" toml:"network"`
	Addr    string `json:"addr,omitempty" toml:"addr"`
}

// Find returns the path to the user's configuration file.
func Find() (string, error) {
	return xdg.Config(Name, false)
}

// Load reads, decodes and validates the TOML configuration file at path.
// If path is empty, the user's configuration file is used if it exists
// and an empty configuration is returned if it does not.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Find()
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		if err != nil {
			return nil, err
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates TOML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	_, err = Vet(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Vet validates cfg against the configuration schema, returning the
// paths of invalid fields.
func Vet(cfg *Config) (paths [][]string, err error) {
	return Validate(Schema, cfg)
}

// Schema is the CUE schema for a valid configuration.
const Schema = `
{
	log_level?:      _#log_level
	log_add_source?: bool
	clipboard?:      _#clipboard
	history?:        _#history
	serve?:          _#serve
	rules?:          {[string]: string & !=""}
}

_#clipboard: {
	strategy?: "file" | "xorg" | "klipper" | "cocoa" | "command" | "windows"
	path?:     string
	timeout?:  _#duration
	copy?:     [...string & !=""]
	paste?:    [...string & !=""]
	clear?:    [...string & !=""]
}

_#history: {
	dsn?: string & !=""
}

_#serve: {
	network?: "unix" | "tcp"
	addr?:    string
}

_#duration:  =~"^([0-9]+(\\.[0-9]*)?(ns|us|µs|ms|s|m|h))+$"
_#log_level: =~"(?i)^(?:debug|info|warn|error)$"
`
