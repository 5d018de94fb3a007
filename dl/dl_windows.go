// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dl

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Binding flags have no meaning on windows.
const (
	RTLD_LAZY   = 0
	RTLD_NOW    = 0
	RTLD_GLOBAL = 0
	RTLD_LOCAL  = 0
)

type handle = windows.Handle

func open(name string, _ int) (handle, *Error) {
	h, err := windows.LoadLibraryEx(name, 0, 0)
	if err != nil {
		return 0, winError("open", name, err)
	}
	return h, nil
}

func symbol(h handle, name string) (unsafe.Pointer, error) {
	addr, err := windows.GetProcAddress(h, name)
	if err != nil {
		return nil, winError("symbol", name, err)
	}
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr)), nil
}

func closeLib(h handle, name string) error {
	err := windows.FreeLibrary(h)
	if err != nil {
		return winError("close", name, err)
	}
	return nil
}

func winError(op, name string, err error) *Error {
	e := &Error{Op: op, Name: name, Msg: err.Error()}
	var errno windows.Errno
	if errors.As(err, &errno) {
		e.Code = uintptr(errno)
	}
	return e
}
