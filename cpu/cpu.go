// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu reports the host's processor count and the pointer-width
// architecture class of the build target.
package cpu

import (
	"fmt"
	"strconv"

	pscpu "github.com/shirou/gopsutil/v4/cpu"
)

// Fallback is the logical core count reported when the host provides no
// way to query it, or the query fails.
const Fallback = 1

// Count is the result of a core count query.
type Count struct {
	// Logical is the number of online logical processors.
	// It is never less than one.
	Logical int `json:"logical"`

	// Physical is the number of physical cores, or zero
	// if it could not be determined.
	Physical int `json:"physical,omitempty"`

	// Source is the mechanism used to obtain Logical.
	Source string `json:"source"`

	// Reliable is false if Logical is the Fallback value
	// rather than a value obtained from the host.
	Reliable bool `json:"reliable"`
}

// CoreCount returns the number of online logical processors. If the host
// cannot be queried, CoreCount returns Fallback.
func CoreCount() int {
	n, _, err := logical()
	if err != nil || n < 1 {
		return Fallback
	}
	return n
}

// Cores returns the logical and physical core counts. If the logical count
// cannot be obtained, the returned Count holds Fallback with Reliable false
// and a non-nil error is returned.
func Cores() (Count, error) {
	n, src, err := logical()
	if err == nil && n < 1 {
		err = fmt.Errorf("%s reported %d processors", src, n)
	}
	c := Count{Logical: n, Source: src, Reliable: err == nil}
	if err != nil {
		c.Logical = Fallback
	}
	// Physical core counts are best effort.
	p, perr := pscpu.Counts(false)
	if perr == nil && p > 0 {
		c.Physical = p
	}
	return c, err
}

// Arch is the architecture class of the build target.
type Arch int

const (
	Unknown Arch = iota
	X86
	X86_64
)

// Architecture returns the architecture class implied by the pointer
// width of the build target. It does not inspect the running processor.
func Architecture() Arch {
	return archFor(strconv.IntSize)
}

func archFor(bits int) Arch {
	switch {
	case bits > 32:
		return X86_64
	case bits == 32:
		return X86
	default:
		return Unknown
	}
}

func (a Arch) String() string {
	switch a {
	case Unknown:
		return "unknown"
	case X86:
		return "x86"
	case X86_64:
		return "x86_64"
	default:
		return "Arch(" + strconv.Itoa(int(a)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Arch) MarshalText() ([]byte, error) {
	switch a {
	case Unknown, X86, X86_64:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("invalid arch: %d", int(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Arch) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unknown":
		*a = Unknown
	case "x86":
		*a = X86
	case "x86_64":
		*a = X86_64
	default:
		return fmt.Errorf("invalid arch: %q", text)
	}
	return nil
}
