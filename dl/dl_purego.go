// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin || freebsd || linux || netbsd) && !cgo

package dl

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

const (
	RTLD_LAZY   = purego.RTLD_LAZY
	RTLD_NOW    = purego.RTLD_NOW
	RTLD_GLOBAL = purego.RTLD_GLOBAL
	RTLD_LOCAL  = purego.RTLD_LOCAL
)

type handle = uintptr

func open(name string, flags int) (handle, *Error) {
	h, err := purego.Dlopen(name, flags)
	if err != nil {
		return 0, &Error{Op: "open", Name: name, Msg: err.Error()}
	}
	return h, nil
}

func symbol(h handle, name string) (unsafe.Pointer, error) {
	addr, err := purego.Dlsym(h, name)
	if err != nil {
		return nil, &Error{Op: "symbol", Name: name, Msg: err.Error()}
	}
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr)), nil
}

func closeLib(h handle, name string) error {
	err := purego.Dlclose(h)
	if err != nil {
		return &Error{Op: "close", Name: name, Msg: err.Error()}
	}
	return nil
}
