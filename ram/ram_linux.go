// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ram

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func stat() (Stats, error) {
	var info unix.Sysinfo_t
	err := unix.Sysinfo(&info)
	if err != nil {
		return Stats{}, fmt.Errorf("ram: sysinfo: %w", err)
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		// Kernels before 2.3.23 report in bytes.
		unit = 1
	}
	return Stats{
		Total: uint64(info.Totalram) * unit,
		Free:  uint64(info.Freeram) * unit,
	}, nil
}

func limit() (Stats, error) {
	return cgroupLimit(os.DirFS("/"))
}
