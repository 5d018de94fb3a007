// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

var envOrDefaultTests = []struct {
	name string
	set  map[string]string

	key, def, home string

	want   string
	wantOK bool
}{
	{
		name: "env",
		set: map[string]string{
			"ICE_TEST_HOME": "testdata/home",
			"ICE_TEST_KEY":  "testdata/home/dir",
		},
		key:  "ICE_TEST_KEY",
		def:  "testdata/global_dir",
		home: "ICE_TEST_HOME",

		want:   "testdata/home/dir",
		wantOK: true,
	},
	{
		name: "empty_env",
		set: map[string]string{
			"ICE_TEST_HOME": "testdata/home",
			"ICE_TEST_KEY":  "",
		},
		key:  "ICE_TEST_KEY",
		def:  "global_dir",
		home: "ICE_TEST_HOME",

		want:   filepath.Join("testdata/home", "global_dir"),
		wantOK: true,
	},
	{
		name: "home_relative",
		set: map[string]string{
			"ICE_TEST_HOME": "testdata/home",
		},
		key:  "ICE_TEST_KEY",
		def:  "testdata/global_dir",
		home: "ICE_TEST_HOME",

		want:   filepath.Join("testdata/home", "testdata/global_dir"),
		wantOK: true,
	},
	{
		name: "no_default",
		set: map[string]string{
			"ICE_TEST_HOME": "testdata/home",
		},
		key:  "ICE_TEST_KEY",
		def:  "",
		home: "ICE_TEST_HOME",

		want:   "",
		wantOK: false,
	},
	{
		name: "no_home",
		key:  "ICE_TEST_KEY",
		def:  "testdata/global_dir",
		home: "",

		want:   "testdata/global_dir",
		wantOK: true,
	},
	{
		name: "missing_home",
		key:  "ICE_TEST_KEY",
		def:  "testdata/global_dir",
		home: "ICE_TEST_MISSING_HOME",

		want:   "",
		wantOK: false,
	},
}

func TestEnvOrDefault(t *testing.T) {
	for _, test := range envOrDefaultTests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.set {
				t.Setenv(k, v)
			}
			got, gotOK := envOrDefault(test.key, test.def, test.home)
			if gotOK != test.wantOK {
				t.Errorf("unexpected ok: got:%t want:%t", gotOK, test.wantOK)
			}
			if got != test.want {
				t.Errorf("unexpected result: got:%q want:%q", got, test.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	home := t.TempDir()
	global := t.TempDir()
	t.Setenv("ICE_TEST_HOME", home)

	err := os.MkdirAll(filepath.Join(home, "local"), 0o755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(home, "local", "a.toml"), nil, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(global, "b.toml"), nil, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	got, err := find("a.toml", "", "local", "", global, "ICE_TEST_HOME", true)
	if err != nil {
		t.Errorf("unexpected error finding local file: %v", err)
	}
	if want := filepath.Join(home, "local", "a.toml"); got != want {
		t.Errorf("unexpected local path: got:%q want:%q", got, want)
	}

	_, err = find("b.toml", "", "local", "", global, "ICE_TEST_HOME", true)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error for local only search: got:%v want:%v", err, fs.ErrNotExist)
	}

	got, err = find("b.toml", "", "local", "", global, "ICE_TEST_HOME", false)
	if err != nil {
		t.Errorf("unexpected error finding global file: %v", err)
	}
	if want := filepath.Join(global, "b.toml"); got != want {
		t.Errorf("unexpected global path: got:%q want:%q", got, want)
	}
}
