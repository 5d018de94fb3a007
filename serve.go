// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/kortschak/ice/internal/xdg"
	"github.com/kortschak/ice/platform"
	"github.com/kortschak/ice/rpc"
)

// serve runs the RPC daemon until it is interrupted or receives a stop
// notification. Only one daemon may run per runtime directory.
func serve(ctx context.Context, env *environment, args []string) int {
	fs := newFlagSet("serve")
	network := fs.String("network", "", "network for communication (unix or tcp) (default from config or unix)")
	addr := fs.String("addr", "", "address for communication (default from config or network default)")
	err := fs.Parse(args)
	if err != nil || fs.NArg() != 0 {
		if err == nil {
			fs.Usage()
		}
		return invocationError
	}
	if cfg := env.cfg.Serve; cfg != nil {
		if *network == "" {
			*network = cfg.Network
		}
		if *addr == "" {
			*addr = cfg.Addr
		}
	}
	switch *network {
	case "":
		*network = "unix"
	case "unix", "tcp":
	default:
		fs.Usage()
		return invocationError
	}
	opts, err := env.cfg.Clipboard.Options(env.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}

	mlog := env.log.With(slog.String("component", "ice.main"))

	runtimeDir, _ := xdg.RuntimeDir()
	runtimeDir = filepath.Join(runtimeDir, rpc.RuntimeDir)
	err = os.MkdirAll(runtimeDir, 0o700)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	pidFile := filepath.Join(runtimeDir, "pid")
	fl := flock.New(pidFile)
	ok, err := fl.TryLock()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "ice is already running")
		return internalError
	}
	defer func() {
		fl.Unlock()
		os.Remove(pidFile)
	}()
	pid := fmt.Sprintln(os.Getpid())
	err = os.WriteFile(pidFile, []byte(pid), 0o600)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}

	srv, err := rpc.NewServer(ctx, *network, *addr, platform.Host(), opts, env.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	fmt.Printf("%s %s\n", srv.Addr().Network(), srv.Addr())
	mlog.LogAttrs(ctx, slog.LevelInfo, "serving", slog.String("network", *network), slog.String("addr", srv.Addr().String()))

	select {
	case <-ctx.Done():
		mlog.LogAttrs(ctx, slog.LevelInfo, "terminating")
	case <-srv.Done():
		mlog.LogAttrs(ctx, slog.LevelInfo, "stopped")
	}
	err = srv.Close()
	if err != nil {
		mlog.LogAttrs(context.Background(), slog.LevelError, "close", slog.Any("error", err))
		return internalError
	}
	return success
}
