// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin || freebsd || linux || netbsd || windows

package dl

import (
	"fmt"
	"reflect"

	"github.com/ebitengine/purego"
)

// Func binds the named symbol to the function pointed to by fptr, which
// must be a non-nil pointer to a func variable. The bound function must
// not be called after the Lib has been closed.
//
//	var getpid func() int32
//	err := lib.Func("getpid", &getpid)
func (l *Lib) Func(name string, fptr any) error {
	v := reflect.ValueOf(fptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("dl: Func requires a pointer to a func variable, got %T", fptr)
	}
	p, err := l.Symbol(name)
	if err != nil {
		return err
	}
	if p == nil {
		return &Error{Op: "symbol", Name: name, Msg: "nil symbol address"}
	}
	purego.RegisterFunc(fptr, uintptr(p))
	return nil
}
