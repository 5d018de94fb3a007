// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clipboard

import (
	"errors"
	"runtime"

	"golang.org/x/sys/execabs"
)

func lookShell() (string, error) {
	if runtime.GOOS == "windows" {
		return "", errors.New("no posix shell")
	}
	return execabs.LookPath("sh")
}
