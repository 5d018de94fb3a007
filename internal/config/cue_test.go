// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

var vetTests = []struct {
	name      string
	config    *Config
	wantPaths [][]string
	wantErr   bool
}{
	{
		name:   "empty",
		config: &Config{},
	},
	{
		name: "complete",
		config: &Config{
			LogLevel:  ptr(slog.LevelDebug),
			AddSource: ptr(true),
			Clipboard: &Clipboard{
				Strategy: "command",
				Timeout:  "1m30s",
				Copy:     []string{"wl-copy"},
				Paste:    []string{"wl-paste", "--no-newline"},
			},
			History: &History{DSN: "history.db"},
			Serve:   &Serve{Network: "unix"},
			Rules: map[string]string{
				"cores": "cores >= 2",
			},
		},
	},
	{
		name: "file_strategy",
		config: &Config{
			Clipboard: &Clipboard{
				Strategy: "file",
				Path:     "/tmp/clip.txt",
			},
		},
	},
	{
		name: "unknown_strategy",
		config: &Config{
			Clipboard: &Clipboard{Strategy: "carrier-pigeon"},
		},
		wantPaths: [][]string{{"clipboard", "strategy"}},
		wantErr:   true,
	},
	{
		name: "invalid_timeout",
		config: &Config{
			Clipboard: &Clipboard{Timeout: "soon"},
		},
		wantPaths: [][]string{{"clipboard", "timeout"}},
		wantErr:   true,
	},
	{
		name: "empty_command",
		config: &Config{
			Clipboard: &Clipboard{
				Strategy: "command",
				Copy:     []string{},
			},
		},
	},
	{
		name: "invalid_network",
		config: &Config{
			Serve: &Serve{Network: "udp"},
		},
		wantPaths: [][]string{{"serve", "network"}},
		wantErr:   true,
	},
	{
		name: "invalid_log_level",
		config: &Config{
			LogLevel: ptr(slog.LevelInfo + 2),
		},
		wantPaths: [][]string{{"log_level"}},
		wantErr:   true,
	},
	{
		name: "empty_rule",
		config: &Config{
			Rules: map[string]string{"nothing": ""},
		},
		wantPaths: [][]string{{"rules", "nothing"}},
		wantErr:   true,
	},
}

func TestVet(t *testing.T) {
	for _, test := range vetTests {
		t.Run(test.name, func(t *testing.T) {
			paths, err := Vet(test.config)
			if (err != nil) != test.wantErr {
				t.Errorf("unexpected error: got:%v want error:%t", err, test.wantErr)
			}
			if !cmp.Equal(test.wantPaths, paths) {
				t.Errorf("unexpected paths:\n--- want:\n+++ got:\n%s", cmp.Diff(test.wantPaths, paths))
			}
		})
	}
}

func TestUnique(t *testing.T) {
	got := unique([][]string{
		{"serve", "network"},
		{"clipboard", "strategy"},
		{"serve", "network"},
		{"clipboard"},
		{"clipboard", "strategy"},
	})
	want := [][]string{
		{"clipboard"},
		{"clipboard", "strategy"},
		{"serve", "network"},
	}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected paths:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}
