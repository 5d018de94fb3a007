// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"encoding/json"
	"runtime"
	"strconv"
	"testing"
)

func TestCoreCount(t *testing.T) {
	n := CoreCount()
	if n < 1 {
		t.Errorf("unexpected core count: got:%d want:>=1", n)
	}
	c, err := Cores()
	if err != nil {
		t.Logf("core count is not reliable on %s: %v", runtime.GOOS, err)
		if c.Reliable {
			t.Error("unexpected reliable count with error")
		}
		if c.Logical != Fallback {
			t.Errorf("unexpected logical count for failed query: got:%d want:%d", c.Logical, Fallback)
		}
		return
	}
	if c.Logical != n {
		t.Errorf("mismatched core counts: Cores:%d CoreCount:%d", c.Logical, n)
	}
	if c.Physical > c.Logical {
		t.Errorf("more physical cores than logical: physical:%d logical:%d", c.Physical, c.Logical)
	}
	if !c.Reliable {
		t.Error("unexpected unreliable count without error")
	}
}

var archTests = []struct {
	bits int
	want Arch
}{
	{bits: 8, want: Unknown},
	{bits: 16, want: Unknown},
	{bits: 31, want: Unknown},
	{bits: 32, want: X86},
	{bits: 33, want: X86_64},
	{bits: 64, want: X86_64},
	{bits: 128, want: X86_64},
}

func TestArchFor(t *testing.T) {
	for _, test := range archTests {
		got := archFor(test.bits)
		if got != test.want {
			t.Errorf("unexpected arch for %d bits: got:%v want:%v", test.bits, got, test.want)
		}
	}
}

func TestArchitecture(t *testing.T) {
	want := archFor(strconv.IntSize)
	for i := 0; i < 10; i++ {
		got := Architecture()
		if got != want {
			t.Fatalf("unexpected arch on call %d: got:%v want:%v", i, got, want)
		}
	}
	switch want {
	case Unknown, X86, X86_64:
	default:
		t.Errorf("arch out of range: %d", int(want))
	}
}

func TestArchText(t *testing.T) {
	for _, a := range []Arch{Unknown, X86, X86_64} {
		b, err := json.Marshal(a)
		if err != nil {
			t.Errorf("unexpected error marshaling %v: %v", a, err)
			continue
		}
		var got Arch
		err = json.Unmarshal(b, &got)
		if err != nil {
			t.Errorf("unexpected error unmarshaling %s: %v", b, err)
			continue
		}
		if got != a {
			t.Errorf("unexpected arch round trip: got:%v want:%v", got, a)
		}
	}
	_, err := Arch(42).MarshalText()
	if err == nil {
		t.Error("expected error marshaling invalid arch")
	}
	var a Arch
	err = a.UnmarshalText([]byte("arm64"))
	if err == nil {
		t.Error("expected error unmarshaling unknown arch name")
	}
}
