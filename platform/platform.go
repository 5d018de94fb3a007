// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform composes the cpu, ram, dl and clipboard packages
// behind a single capability interface.
package platform

import (
	"context"
	"errors"
	"runtime"

	"github.com/kortschak/ice/clipboard"
	"github.com/kortschak/ice/cpu"
	"github.com/kortschak/ice/dl"
	"github.com/kortschak/ice/ram"
)

// Capabilities is the set of host capability queries.
type Capabilities interface {
	// Cores returns the host's core counts.
	Cores() (cpu.Count, error)
	// Arch returns the architecture class of the build target.
	Arch() cpu.Arch
	// Memory returns the host's physical memory.
	Memory() (ram.Stats, error)
	// Limit returns the process's memory limit.
	Limit() (ram.Stats, error)
	// Load loads the shared library at path.
	Load(path string) (*dl.Lib, error)
	// Clipboard opens a clipboard.
	Clipboard(ctx context.Context, opts clipboard.Options) (*clipboard.Clipboard, error)
}

// Host returns the Capabilities of the running host.
func Host() Capabilities { return host{} }

type host struct{}

func (host) Cores() (cpu.Count, error)         { return cpu.Cores() }
func (host) Arch() cpu.Arch                    { return cpu.Architecture() }
func (host) Memory() (ram.Stats, error)        { return ram.Stat() }
func (host) Limit() (ram.Stats, error)         { return ram.Limit() }
func (host) Load(path string) (*dl.Lib, error) { return dl.Load(path) }
func (host) Clipboard(ctx context.Context, opts clipboard.Options) (*clipboard.Clipboard, error) {
	return clipboard.Open(ctx, opts)
}

// Report is a snapshot of host capabilities.
type Report struct {
	GOOS   string `json:"goos"`
	GOARCH string `json:"goarch"`

	Arch     cpu.Arch `json:"arch"`
	Cores    int      `json:"cores"`
	Physical int      `json:"physical,omitempty"`
	Reliable bool     `json:"reliable_cores"`

	TotalMemory uint64 `json:"total_memory"`
	FreeMemory  uint64 `json:"free_memory"`
	// MemoryLimit is zero if the process is unconstrained.
	MemoryLimit uint64 `json:"memory_limit,omitempty"`

	Strategies []string `json:"strategies"`

	// Errors holds the errors encountered while probing,
	// keyed by field.
	Errors map[string]string `json:"errors,omitempty"`
}

// Probe returns a Report for caps.
func Probe(ctx context.Context, caps Capabilities) Report {
	r := Report{
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		Arch:       caps.Arch(),
		Strategies: clipboard.Strategies(),
	}
	addErr := func(field string, err error) {
		if r.Errors == nil {
			r.Errors = make(map[string]string)
		}
		r.Errors[field] = err.Error()
	}

	c, err := caps.Cores()
	if err != nil {
		addErr("cores", err)
	}
	r.Cores = c.Logical
	r.Physical = c.Physical
	r.Reliable = c.Reliable

	m, err := caps.Memory()
	if err != nil {
		addErr("memory", err)
	} else {
		r.TotalMemory = m.Total
		r.FreeMemory = m.Free
	}

	l, err := caps.Limit()
	switch {
	case err == nil:
		r.MemoryLimit = l.Total
	case errors.Is(err, ram.ErrNoLimit), errors.Is(err, ram.ErrUnsupported):
	default:
		addErr("memory_limit", err)
	}

	return r
}

// Vars returns the report as a map of variables for rule evaluation.
func (r Report) Vars() map[string]any {
	return map[string]any{
		"goos":         r.GOOS,
		"goarch":       r.GOARCH,
		"arch":         r.Arch.String(),
		"cores":        int64(r.Cores),
		"physical":     int64(r.Physical),
		"total_memory": r.TotalMemory,
		"free_memory":  r.FreeMemory,
		"memory_limit": r.MemoryLimit,
		"strategies":   r.Strategies,
	}
}
