// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris || windows)

package cpu

import "errors"

func logical() (int, string, error) {
	return Fallback, "fallback", errors.New("no processor count available on this platform")
}
