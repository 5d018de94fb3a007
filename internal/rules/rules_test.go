// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rules

import (
	"testing"

	"github.com/kortschak/ice/cpu"
	"github.com/kortschak/ice/platform"
)

var report = platform.Report{
	GOOS:        "linux",
	GOARCH:      "amd64",
	Arch:        cpu.X86_64,
	Cores:       8,
	Physical:    4,
	Reliable:    true,
	TotalMemory: 16 << 30,
	FreeMemory:  2 << 30,
	Strategies:  []string{"xorg", "command", "file"},
}

var ruleTests = []struct {
	src     string
	want    bool
	wantErr bool
}{
	{src: `cores >= 4`, want: true},
	{src: `cores > physical`, want: true},
	{src: `arch == "x86_64"`, want: true},
	{src: `arch == "x86"`, want: false},
	{src: `goos == "linux" && goarch == "amd64"`, want: true},
	{src: `total_memory >= parse_size("16GiB")`, want: true},
	{src: `free_memory >= parse_size("4 GiB")`, want: false},
	{src: `free_memory >= parse_size("2147483648")`, want: true},
	{src: `memory_limit == 0u`, want: true},
	{src: `"xorg" in strategies`, want: true},
	{src: `"windows" in strategies`, want: false},
	{src: `strategies.exists(s, s == "file")`, want: true},
	{src: `parse_size("1.5KiB") == 1536u`, want: true},
	{src: `parse_size("lots") > 0u`, wantErr: true},
	{src: `parse_size("1e30") > 0u`, wantErr: true},
	{src: `size(b"abc") == 3 && bytes("abc") == b"abc"`, want: true},
	{src: `cores`, wantErr: true},
	{src: `no_such_var > 1`, wantErr: true},
	{src: `cores >=`, wantErr: true},
}

func TestRules(t *testing.T) {
	for _, test := range ruleTests {
		t.Run(test.src, func(t *testing.T) {
			r, err := Compile(test.src)
			if err != nil {
				if !test.wantErr {
					t.Fatalf("unexpected compile error: %v", err)
				}
				return
			}
			got, err := r.Eval(report)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected eval error: got:%v want error:%t", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("unexpected result: got:%t want:%t", got, test.want)
			}
		})
	}
}

var sizeTests = []struct {
	in      string
	want    uint64
	wantErr bool
}{
	{in: "0", want: 0},
	{in: "512", want: 512},
	{in: "512B", want: 512},
	{in: "1KB", want: 1000},
	{in: "1KiB", want: 1024},
	{in: "2 MiB", want: 2 << 20},
	{in: "3GB", want: 3e9},
	{in: "1TiB", want: 1 << 40},
	{in: "0.5GiB", want: 1 << 29},
	{in: "-1", wantErr: true},
	{in: "GiB", wantErr: true},
	{in: "99999999999TiB", wantErr: true},
	{in: "1e30", wantErr: true},
	{in: "1e30GiB", wantErr: true},
	{in: "16777216TiB", wantErr: true},
	{in: "Inf", wantErr: true},
	{in: "+Inf", wantErr: true},
	{in: "NaN", wantErr: true},
	{in: "1.5e3", want: 1500},
}

func TestParseSize(t *testing.T) {
	for _, test := range sizeTests {
		got, err := parseSize(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for %q: %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("unexpected size for %q: got:%d want:%d", test.in, got, test.want)
		}
	}
}
