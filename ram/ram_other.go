// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package ram

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

func stat() (Stats, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return Stats{Total: vm.Total, Free: vm.Free}, nil
}

func limit() (Stats, error) {
	return Stats{}, ErrUnsupported
}
