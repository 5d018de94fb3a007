// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ram

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestStat(t *testing.T) {
	s, err := Stat()
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			t.Skipf("memory query unsupported: %v", err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total == 0 {
		t.Error("unexpected zero total memory")
	}
	if s.Free > s.Total {
		t.Errorf("free memory exceeds total: free:%d total:%d", s.Free, s.Total)
	}
	if got := TotalBytes(); got == 0 {
		t.Error("unexpected zero TotalBytes")
	}
}

var cgroupTests = []struct {
	name    string
	fs      fstest.MapFS
	want    Stats
	wantErr error
}{
	{
		name: "v2",
		fs: fstest.MapFS{
			cgroupV2Max:     {Data: []byte("1073741824\n")},
			cgroupV2Current: {Data: []byte("536870912\n")},
			cgroupV2Stat:    {Data: []byte("anon 1024\ninactive_file 1048576\nactive_file 4096\n")},
		},
		want: Stats{Total: 1 << 30, Free: 1<<29 + 1<<20},
	},
	{
		name: "v2_no_stat",
		fs: fstest.MapFS{
			cgroupV2Max:     {Data: []byte("1000\n")},
			cgroupV2Current: {Data: []byte("400\n")},
		},
		want: Stats{Total: 1000, Free: 600},
	},
	{
		name: "v2_over_limit",
		fs: fstest.MapFS{
			cgroupV2Max:     {Data: []byte("1000\n")},
			cgroupV2Current: {Data: []byte("1200\n")},
			cgroupV2Stat:    {Data: []byte("inactive_file 100\n")},
		},
		want: Stats{Total: 1000, Free: 100},
	},
	{
		name: "v2_reclaim_clamped",
		fs: fstest.MapFS{
			cgroupV2Max:     {Data: []byte("1000\n")},
			cgroupV2Current: {Data: []byte("100\n")},
			cgroupV2Stat:    {Data: []byte("inactive_file 500\n")},
		},
		want: Stats{Total: 1000, Free: 1000},
	},
	{
		name: "v2_unlimited",
		fs: fstest.MapFS{
			cgroupV2Max:     {Data: []byte("max\n")},
			cgroupV2Current: {Data: []byte("400\n")},
		},
		wantErr: ErrNoLimit,
	},
	{
		name: "v1",
		fs: fstest.MapFS{
			cgroupV1Limit: {Data: []byte("2048\n")},
			cgroupV1Usage: {Data: []byte("1024\n")},
			cgroupV1Stat:  {Data: []byte("cache 10\ntotal_inactive_file 24\n")},
		},
		want: Stats{Total: 2048, Free: 1048},
	},
	{
		name: "v1_unlimited",
		fs: fstest.MapFS{
			cgroupV1Limit: {Data: []byte("9223372036854771712\n")},
			cgroupV1Usage: {Data: []byte("1024\n")},
		},
		wantErr: ErrNoLimit,
	},
	{
		name:    "none",
		fs:      fstest.MapFS{},
		wantErr: ErrNoLimit,
	},
}

func TestCgroupLimit(t *testing.T) {
	for _, test := range cgroupTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := cgroupLimit(test.fs)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("unexpected error: got:%v want:%v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

func TestCgroupLimitInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		cgroupV2Max:     {Data: []byte("lots\n")},
		cgroupV2Current: {Data: []byte("400\n")},
	}
	_, err := cgroupLimit(fsys)
	if err == nil {
		t.Fatal("expected error for invalid limit")
	}
	if errors.Is(err, ErrNoLimit) {
		t.Errorf("unexpected no limit error: %v", err)
	}
}

func TestLimit(t *testing.T) {
	s, err := Limit()
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrNoLimit):
		t.Skipf("no memory limit: %v", err)
	case err != nil:
		t.Skipf("could not read limit: %v", err)
	}
	if s.Free > s.Total {
		t.Errorf("available memory exceeds limit: free:%d limit:%d", s.Free, s.Total)
	}
}
