// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ram reports the host's physical memory.
package ram

import "errors"

// Stats holds a memory measurement in bytes.
type Stats struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
}

var (
	// ErrUnsupported is returned when the host provides no way
	// to obtain the requested measurement.
	ErrUnsupported = errors.New("ram: unsupported platform")

	// ErrNoLimit is returned by Limit when the process is not
	// constrained by a memory limit.
	ErrNoLimit = errors.New("ram: no memory limit")
)

// TotalBytes returns the total physical memory in bytes, or zero
// if it could not be obtained.
func TotalBytes() uint64 {
	s, err := Stat()
	if err != nil {
		return 0
	}
	return s.Total
}

// FreeBytes returns the free physical memory in bytes, or zero
// if it could not be obtained. Note that zero is also a valid
// measurement on a host under memory pressure; use Stat to
// distinguish the two.
func FreeBytes() uint64 {
	s, err := Stat()
	if err != nil {
		return 0
	}
	return s.Free
}

// Stat returns the total and free physical memory. When err is nil,
// Total is not less than Free. Stat is safe for concurrent use.
func Stat() (Stats, error) {
	s, err := stat()
	if err != nil {
		return Stats{}, err
	}
	if s.Free > s.Total {
		s.Free = s.Total
	}
	return s, nil
}

// Limit returns the memory limit imposed on the process by its
// control group and the memory still available under that limit.
// It returns ErrNoLimit if the process is unconstrained and
// ErrUnsupported on hosts without control groups.
func Limit() (Stats, error) {
	return limit()
}
