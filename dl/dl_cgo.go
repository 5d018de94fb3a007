// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix && cgo

package dl

/*
#cgo linux LDFLAGS: -ldl
#include <stdlib.h>
#include <dlfcn.h>
*/
import "C"

import "unsafe"

const (
	RTLD_LAZY   = int(C.RTLD_LAZY)
	RTLD_NOW    = int(C.RTLD_NOW)
	RTLD_GLOBAL = int(C.RTLD_GLOBAL)
	RTLD_LOCAL  = int(C.RTLD_LOCAL)
)

type handle = unsafe.Pointer

func open(name string, flags int) (handle, *Error) {
	filename := C.CString(name)
	defer C.free(unsafe.Pointer(filename))
	C.dlerror()
	h := C.dlopen(filename, C.int(flags))
	if h == nil {
		return nil, &Error{Op: "open", Name: name, Msg: dlerror()}
	}
	return h, nil
}

func symbol(h handle, name string) (unsafe.Pointer, error) {
	sym := C.CString(name)
	defer C.free(unsafe.Pointer(sym))
	C.dlerror()
	s := C.dlsym(h, sym)
	// A symbol may legitimately resolve to NULL, so failure
	// is signaled only by dlerror.
	if msg := dlerror(); msg != "" {
		return nil, &Error{Op: "symbol", Name: name, Msg: msg}
	}
	return s, nil
}

func closeLib(h handle, name string) error {
	C.dlerror()
	if C.dlclose(h) != 0 {
		return &Error{Op: "close", Name: name, Msg: dlerror()}
	}
	return nil
}

func dlerror() string {
	msg := C.dlerror()
	if msg == nil {
		return ""
	}
	return C.GoString(msg)
}
