// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package clipboard

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002
)

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	openClipboard              = user32.NewProc("OpenClipboard")
	closeClipboard             = user32.NewProc("CloseClipboard")
	emptyClipboard             = user32.NewProc("EmptyClipboard")
	getClipboardData           = user32.NewProc("GetClipboardData")
	setClipboardData           = user32.NewProc("SetClipboardData")
	isClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	getClipboardSequenceNumber = user32.NewProc("GetClipboardSequenceNumber")

	kernel32     = windows.NewLazySystemDLL("kernel32.dll")
	globalAlloc  = kernel32.NewProc("GlobalAlloc")
	globalFree   = kernel32.NewProc("GlobalFree")
	globalLock   = kernel32.NewProc("GlobalLock")
	globalUnlock = kernel32.NewProc("GlobalUnlock")
)

func init() {
	backends["windows"] = newWindowsBackend
}

// windowsBackend uses the user32 clipboard with CF_UNICODETEXT.
type windowsBackend struct {
	timeout time.Duration
}

func newWindowsBackend(_ context.Context, opts Options) (backend, error) {
	err := user32.Load()
	if err != nil {
		return nil, err
	}
	err = kernel32.Load()
	if err != nil {
		return nil, err
	}
	return &windowsBackend{timeout: opts.timeout()}, nil
}

// open opens the clipboard, retrying while another process holds it.
// The returned function closes the clipboard and unlocks the thread.
func (b *windowsBackend) open(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	runtime.LockOSThread()
	for {
		r, _, err := openClipboard.Call(0)
		if r != 0 {
			return func() {
				closeClipboard.Call()
				runtime.UnlockOSThread()
			}, nil
		}
		select {
		case <-ctx.Done():
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("%w: OpenClipboard: %v", ErrTimeout, err)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (b *windowsBackend) set(ctx context.Context, text string) error {
	release, err := b.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	r, _, err := emptyClipboard.Call()
	if r == 0 {
		return fmt.Errorf("EmptyClipboard: %w", err)
	}
	u := utf16.Encode([]rune(text + "\x00"))
	size := uintptr(len(u)) * unsafe.Sizeof(u[0])
	h, _, err := globalAlloc.Call(gmemMoveable, size)
	if h == 0 {
		return fmt.Errorf("GlobalAlloc: %w", err)
	}
	p, _, err := globalLock.Call(h)
	if p == 0 {
		globalFree.Call(h)
		return fmt.Errorf("GlobalLock: %w", err)
	}
	copy(unsafe.Slice((*uint16)(unsafe.Pointer(p)), len(u)), u)
	globalUnlock.Call(h)
	r, _, err = setClipboardData.Call(cfUnicodeText, h)
	if r == 0 {
		globalFree.Call(h)
		return fmt.Errorf("SetClipboardData: %w", err)
	}
	return nil
}

func (b *windowsBackend) get(ctx context.Context) (string, error) {
	release, err := b.open(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	r, _, _ := isClipboardFormatAvailable.Call(cfUnicodeText)
	if r == 0 {
		return "", nil
	}
	h, _, err := getClipboardData.Call(cfUnicodeText)
	if h == 0 {
		return "", fmt.Errorf("GetClipboardData: %w", err)
	}
	p, _, err := globalLock.Call(h)
	if p == 0 {
		return "", fmt.Errorf("GlobalLock: %w", err)
	}
	defer globalUnlock.Call(h)
	return windows.UTF16PtrToString((*uint16)(unsafe.Pointer(p))), nil
}

func (b *windowsBackend) clear(ctx context.Context) error {
	release, err := b.open(ctx)
	if err != nil {
		return err
	}
	defer release()
	r, _, err := emptyClipboard.Call()
	if r == 0 {
		return fmt.Errorf("EmptyClipboard: %w", err)
	}
	return nil
}

func (b *windowsBackend) close() error { return nil }

// notify polls the clipboard sequence number at the poll interval.
func (b *windowsBackend) notify(ctx context.Context, events chan<- struct{}, poll time.Duration, ready func()) error {
	if getClipboardSequenceNumber.Find() != nil {
		return errors.New("GetClipboardSequenceNumber unavailable")
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	last, _, _ := getClipboardSequenceNumber.Call()
	ready()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, _, _ := getClipboardSequenceNumber.Call()
			if n == last {
				continue
			}
			last = n
			select {
			case events <- struct{}{}:
			default:
			}
		}
	}
}
