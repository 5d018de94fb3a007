// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package cpu

import (
	"errors"

	"golang.org/x/sys/windows"
)

func logical() (int, string, error) {
	n := windows.GetActiveProcessorCount(windows.ALL_PROCESSOR_GROUPS)
	if n == 0 {
		return 0, "GetActiveProcessorCount", errors.New("no active processors reported")
	}
	return int(n), "GetActiveProcessorCount", nil
}
