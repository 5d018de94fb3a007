// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package clipboard

/*
#include <limits.h>
#include <poll.h>
#include <stdlib.h>
#include <string.h>
#include <X11/Xlib.h>
#include <X11/Xatom.h>

typedef Display* (*xOpenDisplay) (_Xconst char *display_name);
typedef int (*xCloseDisplay) (Display *display);
typedef XErrorHandler (*xSetErrorHandler) (XErrorHandler handler);
typedef Window (*xDefaultRootWindow) (Display *display);
typedef Window (*xCreateSimpleWindow) (Display *display, Window parent, int x, int y, unsigned int width, unsigned int height, unsigned int border_width, unsigned long border, unsigned long background);
typedef int (*xDestroyWindow) (Display *display, Window w);
typedef Atom (*xInternAtom) (Display *display, _Xconst char *atom_name, Bool only_if_exists);
typedef int (*xSetSelectionOwner) (Display *display, Atom selection, Window owner, Time time);
typedef Window (*xGetSelectionOwner) (Display *display, Atom selection);
typedef int (*xConvertSelection) (Display *display, Atom selection, Atom target, Atom property, Window requestor, Time time);
typedef int (*xPending) (Display *display);
typedef int (*xNextEvent) (Display *display, XEvent *event_return);
typedef Status (*xSendEvent) (Display *display, Window w, Bool propagate, long event_mask, XEvent *event_send);
typedef int (*xChangeProperty) (Display *display, Window w, Atom property, Atom type, int format, int mode, _Xconst unsigned char *data, int nelements);
typedef int (*xGetWindowProperty) (Display *display, Window w, Atom property, long long_offset, long long_length, Bool delete, Atom req_type, Atom *actual_type_return, int *actual_format_return, unsigned long *nitems_return, unsigned long *bytes_after_return, unsigned char **prop_return);
typedef int (*xFree) (void *data);
typedef int (*xFlush) (Display *display);
typedef int (*xConnectionNumber) (Display *display);
struct X11Lib {
	xOpenDisplay XOpenDisplay;
	xCloseDisplay XCloseDisplay;
	xSetErrorHandler XSetErrorHandler;
	xDefaultRootWindow XDefaultRootWindow;
	xCreateSimpleWindow XCreateSimpleWindow;
	xDestroyWindow XDestroyWindow;
	xInternAtom XInternAtom;
	xSetSelectionOwner XSetSelectionOwner;
	xGetSelectionOwner XGetSelectionOwner;
	xConvertSelection XConvertSelection;
	xPending XPending;
	xNextEvent XNextEvent;
	xSendEvent XSendEvent;
	xChangeProperty XChangeProperty;
	xGetWindowProperty XGetWindowProperty;
	xFree XFree;
	xFlush XFlush;
	xConnectionNumber XConnectionNumber;
};

struct selection {
	Display *display;
	Window window;
	Atom clipboard;
	Atom targets;
	Atom utf8;
	Atom string;
	Atom text;
	Atom incr;
	Atom property;
	XErrorHandler prev_handler;
};

// The default Xlib error handler exits the process.
static int ignore_error(Display *display, XErrorEvent *event) {
	return 0;
}

static int sel_open(struct X11Lib *lib, struct selection *s) {
	s->prev_handler = lib->XSetErrorHandler(ignore_error);
	s->display = lib->XOpenDisplay(NULL);
	if (s->display == NULL) {
		lib->XSetErrorHandler(s->prev_handler);
		return 0;
	}
	Window root = lib->XDefaultRootWindow(s->display);
	s->window = lib->XCreateSimpleWindow(s->display, root, 0, 0, 1, 1, 0, 0, 0);
	s->clipboard = lib->XInternAtom(s->display, "CLIPBOARD", False);
	s->targets = lib->XInternAtom(s->display, "TARGETS", False);
	s->utf8 = lib->XInternAtom(s->display, "UTF8_STRING", False);
	s->string = XA_STRING;
	s->text = lib->XInternAtom(s->display, "TEXT", False);
	s->incr = lib->XInternAtom(s->display, "INCR", False);
	s->property = lib->XInternAtom(s->display, "ICE_SELECTION", False);
	return 1;
}

static void sel_close(struct X11Lib *lib, struct selection *s) {
	if (s->display == NULL) {
		return;
	}
	lib->XDestroyWindow(s->display, s->window);
	lib->XCloseDisplay(s->display);
	s->display = NULL;
	lib->XSetErrorHandler(s->prev_handler);
}

// sel_wait waits up to timeout_ms for an event to be available.
// It returns 1 if an event is available, 0 on timeout and -1 on error.
static int sel_wait(struct X11Lib *lib, struct selection *s, int timeout_ms) {
	if (lib->XPending(s->display) > 0) {
		return 1;
	}
	struct pollfd pfd = {
		.fd = lib->XConnectionNumber(s->display),
		.events = POLLIN,
	};
	int n = poll(&pfd, 1, timeout_ms);
	if (n < 0) {
		return -1;
	}
	if (n == 0) {
		return 0;
	}
	return lib->XPending(s->display) > 0;
}

static int sel_own(struct X11Lib *lib, struct selection *s) {
	lib->XSetSelectionOwner(s->display, s->clipboard, s->window, CurrentTime);
	lib->XFlush(s->display);
	return lib->XGetSelectionOwner(s->display, s->clipboard) == s->window;
}

static int sel_owned(struct X11Lib *lib, struct selection *s) {
	return lib->XGetSelectionOwner(s->display, s->clipboard) == s->window;
}

static int sel_has_owner(struct X11Lib *lib, struct selection *s) {
	return lib->XGetSelectionOwner(s->display, s->clipboard) != None;
}

static void sel_disown(struct X11Lib *lib, struct selection *s) {
	lib->XSetSelectionOwner(s->display, s->clipboard, None, CurrentTime);
	lib->XFlush(s->display);
}

static void sel_answer(struct X11Lib *lib, struct selection *s, XSelectionRequestEvent *req, const char *data, int len) {
	XSelectionEvent ev;
	memset(&ev, 0, sizeof(ev));
	ev.type = SelectionNotify;
	ev.display = req->display;
	ev.requestor = req->requestor;
	ev.selection = req->selection;
	ev.target = req->target;
	ev.time = req->time;
	ev.property = None;

	// Obsolete clients may not set a property.
	Atom property = req->property;
	if (property == None) {
		property = req->target;
	}
	if (req->target == s->targets) {
		Atom supported[] = {s->targets, s->utf8, s->string, s->text};
		lib->XChangeProperty(s->display, req->requestor, property, XA_ATOM, 32, PropModeReplace, (unsigned char *)supported, 4);
		ev.property = property;
	} else if (req->target == s->utf8 || req->target == s->string || req->target == s->text) {
		Atom type = req->target == s->text ? s->utf8 : req->target;
		lib->XChangeProperty(s->display, req->requestor, property, type, 8, PropModeReplace, (const unsigned char *)data, len);
		ev.property = property;
	}
	lib->XSendEvent(s->display, req->requestor, False, NoEventMask, (XEvent *)&ev);
	lib->XFlush(s->display);
}

// sel_serve answers selection requests with data for up to timeout_ms.
// It returns 1 if ownership was lost, 0 if it is still held and -1 on error.
static int sel_serve(struct X11Lib *lib, struct selection *s, const char *data, int len, int timeout_ms) {
	int n = sel_wait(lib, s, timeout_ms);
	if (n <= 0) {
		return n;
	}
	while (lib->XPending(s->display) > 0) {
		XEvent ev;
		lib->XNextEvent(s->display, &ev);
		switch (ev.type) {
		case SelectionRequest:
			sel_answer(lib, s, &ev.xselectionrequest, data, len);
			break;
		case SelectionClear:
			if (ev.xselectionclear.selection == s->clipboard) {
				return 1;
			}
			break;
		}
	}
	return 0;
}

static void sel_request(struct X11Lib *lib, struct selection *s, Atom target) {
	lib->XConvertSelection(s->display, s->clipboard, target, s->property, s->window, CurrentTime);
	lib->XFlush(s->display);
}

static void sel_free(struct X11Lib *lib, char *data) {
	lib->XFree(data);
}

#define recv_pending  0
#define recv_data     1
#define recv_refused  2
#define recv_error   -1
#define recv_incr    -2

// sel_receive waits up to timeout_ms for the selection conversion
// requested by sel_request. On recv_data, *data holds *len bytes that
// must be released with XFree.
static int sel_receive(struct X11Lib *lib, struct selection *s, int timeout_ms, char **data, unsigned long *len) {
	int n = sel_wait(lib, s, timeout_ms);
	if (n < 0) {
		return recv_error;
	}
	if (n == 0) {
		return recv_pending;
	}
	while (lib->XPending(s->display) > 0) {
		XEvent ev;
		lib->XNextEvent(s->display, &ev);
		if (ev.type != SelectionNotify || ev.xselection.selection != s->clipboard) {
			continue;
		}
		if (ev.xselection.property == None) {
			return recv_refused;
		}
		Atom type;
		int format;
		unsigned long nitems, after;
		unsigned char *prop = NULL;
		int status = lib->XGetWindowProperty(s->display, s->window, s->property, 0, LONG_MAX/4, True,
			AnyPropertyType, &type, &format, &nitems, &after, &prop);
		if (status != Success) {
			return recv_error;
		}
		if (type == s->incr) {
			if (prop != NULL) {
				lib->XFree(prop);
			}
			return recv_incr;
		}
		*data = (char *)prop;
		*len = nitems * (format / 8);
		return recv_data;
	}
	return recv_pending;
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/kortschak/ice/dl"
)

// step is the longest time spent in a single wait for X events so that
// context cancellation is observed promptly.
const step = 100 * time.Millisecond

func init() {
	backends["xorg"] = newXorgBackend
}

// xorgBackend implements the CLIPBOARD selection protocol using libX11
// loaded at run time.
type xorgBackend struct {
	x11    *dl.Lib
	x11Lib *C.struct_X11Lib
	sel    C.struct_selection

	timeout time.Duration
	log     *slog.Logger
}

func newXorgBackend(_ context.Context, opts Options) (backend, error) {
	x11, x11Lib, err := openX11Lib()
	if err != nil {
		return nil, err
	}
	b := &xorgBackend{
		x11:     x11,
		x11Lib:  x11Lib,
		timeout: opts.timeout(),
		log:     opts.Log,
	}
	if C.sel_open(b.x11Lib, &b.sel) == 0 {
		C.free(unsafe.Pointer(x11Lib))
		x11.Close()
		return nil, errors.New("could not open X display")
	}
	return b, nil
}

func openX11Lib() (*dl.Lib, *C.struct_X11Lib, error) {
	x11, err := dl.Open(dl.RTLD_LAZY, dl.LibName("X11", 0), dl.LibName("X11", 6))
	if err != nil {
		return nil, nil, err
	}
	x11Lib := (*C.struct_X11Lib)(C.calloc(1, C.sizeof_struct_X11Lib))
	syms := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"XOpenDisplay", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XOpenDisplay))},
		{"XCloseDisplay", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XCloseDisplay))},
		{"XSetErrorHandler", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XSetErrorHandler))},
		{"XDefaultRootWindow", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XDefaultRootWindow))},
		{"XCreateSimpleWindow", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XCreateSimpleWindow))},
		{"XDestroyWindow", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XDestroyWindow))},
		{"XInternAtom", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XInternAtom))},
		{"XSetSelectionOwner", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XSetSelectionOwner))},
		{"XGetSelectionOwner", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XGetSelectionOwner))},
		{"XConvertSelection", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XConvertSelection))},
		{"XPending", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XPending))},
		{"XNextEvent", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XNextEvent))},
		{"XSendEvent", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XSendEvent))},
		{"XChangeProperty", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XChangeProperty))},
		{"XGetWindowProperty", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XGetWindowProperty))},
		{"XFree", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XFree))},
		{"XFlush", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XFlush))},
		{"XConnectionNumber", (*unsafe.Pointer)(unsafe.Pointer(&x11Lib.XConnectionNumber))},
	}
	for _, s := range syms {
		p, err := x11.Symbol(s.name)
		if err != nil {
			C.free(unsafe.Pointer(x11Lib))
			x11.Close()
			return nil, nil, err
		}
		*s.dst = p
	}
	return x11, x11Lib, nil
}

// set takes ownership of the CLIPBOARD selection and serves requests
// for text until another client takes ownership. If no client has taken
// ownership within the backend's timeout, ownership is released and
// ErrTimeout is returned.
func (b *xorgBackend) set(ctx context.Context, text string) error {
	if C.sel_own(b.x11Lib, &b.sel) == 0 {
		return errors.New("could not acquire clipboard selection")
	}
	data := C.CString(text)
	defer C.free(unsafe.Pointer(data))

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	for {
		switch C.sel_serve(b.x11Lib, &b.sel, data, C.int(len(text)), C.int(step.Milliseconds())) {
		case 1:
			b.log.LogAttrs(ctx, slog.LevelDebug, "selection taken")
			return nil
		case -1:
			C.sel_disown(b.x11Lib, &b.sel)
			return errors.New("error waiting for selection events")
		}
		if ctx.Err() != nil {
			C.sel_disown(b.x11Lib, &b.sel)
			return fmt.Errorf("%w: serving selection: %w", ErrTimeout, ctx.Err())
		}
	}
}

func (b *xorgBackend) get(ctx context.Context) (string, error) {
	if C.sel_has_owner(b.x11Lib, &b.sel) == 0 {
		return "", nil
	}
	if C.sel_owned(b.x11Lib, &b.sel) != 0 {
		// Only reachable if a previous set was interrupted
		// without releasing ownership.
		C.sel_disown(b.x11Lib, &b.sel)
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	for _, target := range []C.Atom{b.sel.utf8, b.sel.string} {
		C.sel_request(b.x11Lib, &b.sel, target)
		for {
			var (
				data *C.char
				n    C.ulong
			)
			status := C.sel_receive(b.x11Lib, &b.sel, C.int(step.Milliseconds()), &data, &n)
			switch status {
			case C.recv_data:
				text := C.GoStringN(data, C.int(n))
				C.sel_free(b.x11Lib, data)
				return text, nil
			case C.recv_refused:
			case C.recv_incr:
				return "", errors.New("incremental selection transfers are not supported")
			case C.recv_error:
				return "", errors.New("error reading selection")
			case C.recv_pending:
				if ctx.Err() != nil {
					return "", fmt.Errorf("%w: waiting for selection owner: %w", ErrTimeout, ctx.Err())
				}
				continue
			}
			break
		}
	}
	// The owner refused every text target.
	return "", nil
}

func (b *xorgBackend) clear(context.Context) error {
	C.sel_disown(b.x11Lib, &b.sel)
	return nil
}

func (b *xorgBackend) close() error {
	C.sel_close(b.x11Lib, &b.sel)
	C.free(unsafe.Pointer(b.x11Lib))
	b.x11Lib = nil
	return b.x11.Close()
}
