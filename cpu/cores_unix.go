// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package cpu

import "github.com/tklauser/go-sysconf"

func logical() (int, string, error) {
	n, err := sysconf.Sysconf(sysconf.SC_NPROCESSORS_ONLN)
	return int(n), "sysconf", err
}
