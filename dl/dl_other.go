// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows && !(unix && cgo) && !((darwin || freebsd || linux || netbsd) && !cgo)

package dl

import "unsafe"

const (
	RTLD_LAZY   = 0
	RTLD_NOW    = 0
	RTLD_GLOBAL = 0
	RTLD_LOCAL  = 0
)

type handle = uintptr

func open(name string, _ int) (handle, *Error) {
	return 0, &Error{Op: "open", Name: name, Msg: ErrNotImplemented.Error()}
}

func symbol(handle, string) (unsafe.Pointer, error) {
	return nil, ErrNotImplemented
}

func closeLib(handle, string) error {
	return ErrNotImplemented
}
