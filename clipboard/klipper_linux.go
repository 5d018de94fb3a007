// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clipboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	klipperDest  = "org.kde.klipper"
	klipperPath  = "/klipper"
	klipperIface = "org.kde.klipper.klipper."
)

func init() {
	backends["klipper"] = newKlipperBackend
}

// klipperBackend uses the KDE Klipper clipboard manager over the
// DBus session bus.
type klipperBackend struct {
	conn *dbus.Conn
	log  *slog.Logger
}

func newKlipperBackend(ctx context.Context, opts Options) (backend, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	var ok bool
	err = conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, klipperDest).Store(&ok)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if !ok {
		conn.Close()
		return nil, errors.New("klipper not running")
	}
	return &klipperBackend{conn: conn, log: opts.Log}, nil
}

func (b *klipperBackend) set(ctx context.Context, text string) error {
	_, err := dbusCall[struct{}](ctx, b.conn, klipperDest, klipperPath, klipperIface+"setClipboardContents", text)
	return err
}

func (b *klipperBackend) get(ctx context.Context) (string, error) {
	return dbusCall[string](ctx, b.conn, klipperDest, klipperPath, klipperIface+"getClipboardContents")
}

func (b *klipperBackend) clear(ctx context.Context) error {
	_, err := dbusCall[struct{}](ctx, b.conn, klipperDest, klipperPath, klipperIface+"clearClipboardContents")
	return err
}

func (b *klipperBackend) close() error {
	err := b.conn.Close()
	b.conn = nil
	return err
}

// dbusCall calls method on the object at dest and path, storing a single
// result in a T. A struct{} T discards the result.
func dbusCall[T any](ctx context.Context, conn *dbus.Conn, dest, path, method string, args ...any) (T, error) {
	var v T
	c := conn.Object(dest, dbus.ObjectPath(path)).CallWithContext(ctx, method, 0, args...)
	if c.Err != nil {
		return v, c.Err
	}
	if _, discard := any(v).(struct{}); discard {
		return v, nil
	}
	err := c.Store(&v)
	return v, err
}
