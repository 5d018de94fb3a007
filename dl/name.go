// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dl

import (
	"runtime"
	"strconv"
)

// LibName returns the conventional file name of the named library on the
// running platform. A version less than one is omitted.
//
//	linux:   LibName("X11", 6) == "libX11.so.6"
//	darwin:  LibName("X11", 6) == "libX11.6.dylib"
//	windows: LibName("user32", 0) == "user32.dll"
func LibName(name string, version int) string {
	return libName(runtime.GOOS, name, version)
}

func libName(goos, name string, version int) string {
	switch goos {
	case "darwin", "ios":
		if version > 0 {
			return "lib" + name + "." + strconv.Itoa(version) + ".dylib"
		}
		return "lib" + name + ".dylib"
	case "windows":
		if version > 0 {
			return name + "-" + strconv.Itoa(version) + ".dll"
		}
		return name + ".dll"
	default:
		if version > 0 {
			return "lib" + name + ".so." + strconv.Itoa(version)
		}
		return "lib" + name + ".so"
	}
}
