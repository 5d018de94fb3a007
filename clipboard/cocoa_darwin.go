// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package clipboard

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#include <stdlib.h>
#include <string.h>
#import <Cocoa/Cocoa.h>

static int pb_set(const char *data, int len) {
	@autoreleasepool {
		NSPasteboard *pb = [NSPasteboard generalPasteboard];
		[pb clearContents];
		NSString *s = [[[NSString alloc] initWithBytes:data length:len encoding:NSUTF8StringEncoding] autorelease];
		if (s == nil) {
			return 0;
		}
		return [pb setString:s forType:NSPasteboardTypeString];
	}
}

// pb_get returns a malloc allocated copy of the pasteboard string,
// or NULL if the pasteboard holds no string.
static char *pb_get(int *len) {
	@autoreleasepool {
		NSPasteboard *pb = [NSPasteboard generalPasteboard];
		NSString *s = [pb stringForType:NSPasteboardTypeString];
		if (s == nil) {
			return NULL;
		}
		NSData *d = [s dataUsingEncoding:NSUTF8StringEncoding];
		*len = (int)[d length];
		char *buf = malloc(*len + 1);
		memcpy(buf, [d bytes], *len);
		buf[*len] = 0;
		return buf;
	}
}

static void pb_clear() {
	@autoreleasepool {
		[[NSPasteboard generalPasteboard] clearContents];
	}
}

static long pb_change_count() {
	@autoreleasepool {
		return [[NSPasteboard generalPasteboard] changeCount];
	}
}
*/
import "C"

import (
	"context"
	"errors"
	"time"
	"unsafe"
)

func init() {
	backends["cocoa"] = newCocoaBackend
}

// cocoaBackend uses the general NSPasteboard.
type cocoaBackend struct{}

func newCocoaBackend(context.Context, Options) (backend, error) {
	return cocoaBackend{}, nil
}

func (cocoaBackend) set(_ context.Context, text string) error {
	data := C.CString(text)
	defer C.free(unsafe.Pointer(data))
	if C.pb_set(data, C.int(len(text))) == 0 {
		return errors.New("could not write pasteboard")
	}
	return nil
}

func (cocoaBackend) get(context.Context) (string, error) {
	var n C.int
	data := C.pb_get(&n)
	if data == nil {
		return "", nil
	}
	defer C.free(unsafe.Pointer(data))
	return C.GoStringN(data, n), nil
}

func (cocoaBackend) clear(context.Context) error {
	C.pb_clear()
	return nil
}

func (cocoaBackend) close() error { return nil }

// notify polls the pasteboard change count at the poll interval,
// which is cheaper than reading the content.
func (cocoaBackend) notify(ctx context.Context, events chan<- struct{}, poll time.Duration, ready func()) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	last := C.pb_change_count()
	ready()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n := C.pb_change_count()
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
