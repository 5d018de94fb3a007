// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bbrks/wrap/v2"

	"github.com/kortschak/ice/clipboard"
	"github.com/kortschak/ice/internal/history"
	"github.com/kortschak/ice/internal/xdg"
	"github.com/kortschak/ice/platform"
)

// historyFile is the name of the default history database within the
// user's state directory.
const historyFile = "history.sqlite3"

func clip(ctx context.Context, env *environment, args []string) int {
	fs := newFlagSet("clip")
	strategy := fs.String("strategy", "", "clipboard strategy (default from config or first available)")
	path := fs.String("file", "", "file strategy data path")
	timeout := fs.Duration("timeout", 0, "clipboard operation timeout")
	err := fs.Parse(args)
	if err != nil {
		return invocationError
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return invocationError
	}

	opts, err := env.cfg.Clipboard.Options(env.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}
	if *strategy != "" {
		opts.Strategy = *strategy
	}
	if *path != "" {
		opts.Path = *path
		if opts.Strategy == "" {
			opts.Strategy = "file"
		}
	}
	if *timeout != 0 {
		opts.Timeout = *timeout
	}

	sub, args := fs.Arg(0), fs.Args()[1:]
	switch sub {
	case "history":
		return clipHistory(ctx, env, args)
	case "get", "set", "clear", "matches", "watch":
	default:
		fmt.Fprintf(os.Stderr, "unknown clip command: %s\n", sub)
		fs.Usage()
		return invocationError
	}

	c, err := platform.Host().Clipboard(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, clipboard.ErrUnknownStrategy) {
			return invocationError
		}
		return internalError
	}
	defer c.Close()

	switch sub {
	case "get":
		return clipGet(ctx, c, args)
	case "set":
		return clipSet(ctx, c, args)
	case "clear":
		if len(args) != 0 {
			fs.Usage()
			return invocationError
		}
		err = c.Clear(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	case "matches":
		if len(args) != 1 {
			fs.Usage()
			return invocationError
		}
		ok, err := c.Matches(ctx, args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		fmt.Println(ok)
		if !ok {
			return internalError
		}
		return success
	case "watch":
		return clipWatch(ctx, env, c, args)
	}
	panic("unreachable")
}

func clipGet(ctx context.Context, c *clipboard.Clipboard, args []string) int {
	fs := newFlagSet("clip")
	width := fs.Int("wrap", 0, "wrap text at the given column (0 is no wrapping)")
	err := fs.Parse(args)
	if err != nil || fs.NArg() != 0 || *width < 0 {
		if err == nil {
			fs.Usage()
		}
		return invocationError
	}
	text, err := c.Get(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	if *width > 0 && text != "" {
		wrapper := wrap.NewWrapper()
		wrapper.StripTrailingNewline = true
		wrapper.CutLongWords = true
		text = wrapper.Wrap(text, *width)
	}
	fmt.Print(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
	return success
}

// clipSet sets the clipboard to the text argument, or to stdin if the
// argument is "-".
func clipSet(ctx context.Context, c *clipboard.Clipboard, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s clip set <text>\n", os.Args[0])
		return invocationError
	}
	text := args[0]
	if text == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		text = string(b)
	}
	err := c.Set(ctx, text)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	return success
}

// clipWatch prints clipboard changes as JSON lines until interrupted,
// optionally recording them to a history store.
func clipWatch(ctx context.Context, env *environment, c *clipboard.Clipboard, args []string) int {
	fs := newFlagSet("clip")
	poll := fs.Duration("poll", clipboard.DefaultPoll, "polling interval for strategies without change notification")
	dsn := fs.String("history", "", "history database to record changes in")
	limit := fs.Int("n", 0, "stop after n changes (0 is no limit)")
	err := fs.Parse(args)
	if err != nil || fs.NArg() != 0 {
		if err == nil {
			fs.Usage()
		}
		return invocationError
	}

	var store history.Store
	if *dsn != "" || (env.cfg.History != nil && env.cfg.History.DSN != "") {
		store, err = openHistory(ctx, env, *dsn)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	changes := make(chan clipboard.Change)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, changes, *poll)
	}()

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	var n int
	for {
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintln(os.Stderr, err)
				return internalError
			}
			return success
		case ch := <-changes:
			if ch.Err != nil {
				env.log.LogAttrs(ctx, slog.LevelWarn, "watch", slog.Any("error", ch.Err))
				continue
			}
			err := enc.Encode(ch)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return internalError
			}
			if store != nil {
				err = store.Record(ctx, history.Entry{Time: ch.Time, Strategy: c.Strategy(), Text: ch.Text})
				if err != nil {
					env.log.LogAttrs(ctx, slog.LevelError, "history", slog.Any("error", err))
				}
			}
			n++
			if *limit > 0 && n >= *limit {
				cancel()
				<-done
				return success
			}
		}
	}
}

// clipHistory prints the most recent history entries as JSON lines.
func clipHistory(ctx context.Context, env *environment, args []string) int {
	fs := newFlagSet("clip")
	n := fs.Int("n", 10, "number of entries to print (0 is all)")
	dsn := fs.String("history", "", "history database")
	err := fs.Parse(args)
	if err != nil || fs.NArg() != 0 {
		if err == nil {
			fs.Usage()
		}
		return invocationError
	}
	store, err := openHistory(ctx, env, *dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	defer store.Close()
	entries, err := store.Recent(ctx, *n)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	for _, e := range entries {
		err = enc.Encode(struct {
			Time     string `json:"time"`
			Strategy string `json:"strategy"`
			Text     string `json:"text"`
		}{
			Time:     e.Time.UTC().Format(time.RFC3339Nano),
			Strategy: e.Strategy,
			Text:     e.Text,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
	}
	return success
}

// openHistory opens the history store named by dsn, or by the
// configuration if dsn is empty, or the default store in the user's
// state directory if neither is set.
func openHistory(ctx context.Context, env *environment, dsn string) (history.Store, error) {
	if dsn == "" && env.cfg.History != nil {
		dsn = env.cfg.History.DSN
	}
	if dsn == "" {
		dir, ok := xdg.StateHome()
		if !ok {
			return nil, errors.New("no state directory for history")
		}
		dir = filepath.Join(dir, "ice")
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, historyFile)
	}
	return history.Open(ctx, dsn, env.log)
}
