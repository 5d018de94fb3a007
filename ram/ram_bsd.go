// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin && !cgo) || freebsd || netbsd || openbsd || dragonfly

package ram

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sys/unix"
)

func stat() (Stats, error) {
	name := "hw.physmem"
	if runtime.GOOS == "darwin" {
		name = "hw.memsize"
	}
	total, err := unix.SysctlUint64(name)
	if err != nil {
		return Stats{}, fmt.Errorf("ram: sysctl %s: %w", name, err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Stats{}, fmt.Errorf("ram: virtual memory: %w", err)
	}
	return Stats{Total: total, Free: vm.Free}, nil
}

func limit() (Stats, error) {
	return Stats{}, ErrUnsupported
}
