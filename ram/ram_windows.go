// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ram

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

func stat() (Stats, error) {
	var m windows.MemoryStatusEx
	m.Length = uint32(unsafe.Sizeof(m))
	err := windows.GlobalMemoryStatusEx(&m)
	if err != nil {
		return Stats{}, fmt.Errorf("ram: GlobalMemoryStatusEx: %w", err)
	}
	return Stats{Total: m.TotalPhys, Free: m.AvailPhys}, nil
}

func limit() (Stats, error) {
	return Stats{}, ErrUnsupported
}
