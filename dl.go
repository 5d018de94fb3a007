// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kortschak/ice/dl"
	"github.com/kortschak/ice/platform"
)

// load loads a shared library, resolves the requested symbols and
// unloads the library. It fails if the library or any symbol cannot
// be found.
func load(ctx context.Context, env *environment, args []string) int {
	fs := newFlagSet("dl")
	var syms stringList
	fs.Var(&syms, "sym", "symbol to resolve (repeatable)")
	version := fs.Int("version", -1, "treat the argument as a library name with this major version")
	err := fs.Parse(args)
	if err != nil || fs.NArg() != 1 {
		if err == nil {
			fs.Usage()
		}
		return invocationError
	}
	path := fs.Arg(0)
	if *version >= 0 {
		path = dl.LibName(path, *version)
	}

	lib, err := platform.Host().Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, dl.ErrNotImplemented) {
			return invocationError
		}
		return internalError
	}
	env.log.LogAttrs(ctx, slog.LevelDebug, "loaded", slog.String("name", lib.Name()))
	fmt.Printf("loaded %s\n", lib.Name())

	status := success
	for _, name := range syms {
		_, err := lib.Symbol(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = internalError
			continue
		}
		fmt.Printf("found %s\n", name)
	}

	err = lib.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	return status
}
