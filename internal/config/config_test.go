// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kortschak/ice/clipboard"
)

const validConfig = `
log_level = "debug"
log_add_source = true

[clipboard]
strategy = "file"
path = "/tmp/ice_clip.txt"
timeout = "5s"

[history]
dsn = "history.db"

[serve]
network = "tcp"
addr = "localhost:7070"

[rules]
multicore = "cores >= 2"
x11 = '"xorg" in strategies'
`

func TestParse(t *testing.T) {
	got, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{
		LogLevel:  ptr(slog.LevelDebug),
		AddSource: ptr(true),
		Clipboard: &Clipboard{
			Strategy: "file",
			Path:     "/tmp/ice_clip.txt",
			Timeout:  "5s",
		},
		History: &History{DSN: "history.db"},
		Serve:   &Serve{Network: "tcp", Addr: "localhost:7070"},
		Rules: map[string]string{
			"multicore": "cores >= 2",
			"x11":       `"xorg" in strategies`,
		},
	}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected config:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}

	opts, err := got.Clipboard.Options(nil)
	if err != nil {
		t.Fatalf("unexpected error getting clipboard options: %v", err)
	}
	wantOpts := clipboard.Options{
		Strategy: "file",
		Path:     "/tmp/ice_clip.txt",
		Timeout:  5 * time.Second,
	}
	if !cmp.Equal(wantOpts, opts, cmpopts.IgnoreFields(clipboard.Options{}, "Log")) {
		t.Errorf("unexpected options:\n--- want:\n+++ got:\n%s", cmp.Diff(wantOpts, opts, cmpopts.IgnoreFields(clipboard.Options{}, "Log")))
	}
}

var parseErrorTests = []struct {
	name string
	data string
}{
	{name: "syntax", data: "log_level = "},
	{name: "unknown_key", data: "colour = \"blue\"\n"},
	{name: "unknown_table_key", data: "[clipboard]\nstrategy = \"file\"\nflavour = \"mint\"\n"},
	{name: "schema", data: "[serve]\nnetwork = \"udp\"\n"},
	{name: "level", data: "log_level = \"loud\"\n"},
	{name: "empty_argument", data: "[clipboard]\nstrategy = \"command\"\ncopy = [\"\"]\n"},
}

func TestParseErrors(t *testing.T) {
	for _, test := range parseErrorTests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.data))
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseEmptyCommand(t *testing.T) {
	// Empty command lists defer to helper program detection.
	const data = `
[clipboard]
strategy = "command"
copy = []
paste = []
`
	got, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Clipboard == nil || len(got.Clipboard.Copy) != 0 || len(got.Clipboard.Paste) != 0 {
		t.Errorf("unexpected clipboard config: %+v", got.Clipboard)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "global"))
	t.Setenv("HOME", dir)

	path := filepath.Join(dir, "explicit.toml")
	err := os.WriteFile(path, []byte(validConfig), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading explicit path: %v", err)
	}
	if cfg.Serve == nil || cfg.Serve.Addr != "localhost:7070" {
		t.Errorf("unexpected serve config: %+v", cfg.Serve)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error for missing explicit path: got:%v want:%v", err, fs.ErrNotExist)
	}
}

func TestClipboardOptionsDefault(t *testing.T) {
	var c *Clipboard
	opts, err := c.Options(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(clipboard.Options{}, opts) {
		t.Errorf("unexpected default options: %+v", opts)
	}

	_, err = (&Clipboard{Timeout: "never"}).Options(nil)
	if err == nil {
		t.Error("expected error for invalid timeout")
	}
}
