// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dl implements loading of shared libraries and symbol resolution.
package dl

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

var (
	// ErrNotFound is wrapped by errors for libraries or symbols
	// that could not be found.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by operations on a closed Lib.
	ErrClosed = errors.New("library closed")

	// ErrNotImplemented is returned on platforms without a
	// dynamic loader.
	ErrNotImplemented = errors.New("not implemented")
)

// Lib represents an open handle to a dynamically loaded library.
// It is safe for concurrent use. Symbols obtained from a Lib must
// not be used after the Lib has been closed.
type Lib struct {
	mu     sync.Mutex
	handle handle
	name   string
	closed bool
}

// Load opens the library at path with RTLD_LAZY|RTLD_LOCAL binding.
func Load(path string) (*Lib, error) {
	return Open(RTLD_LAZY|RTLD_LOCAL, path)
}

// Open opens the dynamic library corresponding to the first found library
// name in names. On unix systems flags are passed to dlopen; they are
// ignored elsewhere.
func Open(flags int, names ...string) (*Lib, error) {
	if len(names) == 0 {
		return nil, &Error{Op: "open", Msg: "no library names"}
	}
	var last *Error
	for _, n := range names {
		h, err := open(n, flags)
		if err == nil {
			return &Lib{handle: h, name: n}, nil
		}
		last = err
	}
	if len(names) > 1 {
		last.Name = strings.Join(names, ", ")
	}
	return nil, last
}

// Name returns the name the library was opened with.
func (l *Lib) Name() string { return l.name }

// Symbol takes a symbol name and returns a pointer to the symbol.
func (l *Lib) Symbol(name string) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	p, err := symbol(l.handle, name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Close closes the receiver, unloading the library. Symbols must not be used
// after Close has been called. Calling Close more than once returns ErrClosed.
func (l *Lib) Close() error {
	if l == nil {
		return ErrClosed
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	err := closeLib(l.handle, l.name)
	if err != nil {
		return err
	}
	return nil
}

// Error is a loader error. It preserves the diagnostic reported by
// the host's dynamic loader.
type Error struct {
	// Op is the failed operation: "open", "symbol" or "close".
	Op string
	// Name is the library or symbol name.
	Name string
	// Msg is the loader's diagnostic message.
	Msg string
	// Code is the host error code where one is available.
	Code uintptr
}

func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Op)
	if e.Name != "" {
		fmt.Fprintf(&buf, " %s", e.Name)
	}
	if e.Msg != "" {
		fmt.Fprintf(&buf, ": %s", e.Msg)
	}
	if e.Code != 0 {
		fmt.Fprintf(&buf, " (code %d)", e.Code)
	}
	return buf.String()
}

// Unwrap returns ErrNotFound for failed open and symbol operations.
func (e *Error) Unwrap() error {
	switch e.Op {
	case "open", "symbol":
		return ErrNotFound
	}
	return nil
}
