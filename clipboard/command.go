// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/execabs"
)

func init() {
	backends["command"] = newCommandBackend
}

// commandBackend bridges to host clipboard helper programs.
type commandBackend struct {
	copy, paste, clr []string
	timeout          time.Duration
	log              *slog.Logger
}

// helper is a set of clipboard helper commands.
type helper struct {
	name  string
	env   string // required environment variable
	copy  []string
	paste []string
	clear []string
}

// helpers are the known clipboard helpers for each platform in
// preference order.
var helpers = map[string][]helper{
	"darwin": {
		{name: "pbcopy", copy: []string{"pbcopy"}, paste: []string{"pbpaste"}},
	},
	"linux": {
		{name: "wl-clipboard", env: "WAYLAND_DISPLAY", copy: []string{"wl-copy"}, paste: []string{"wl-paste", "--no-newline"}, clear: []string{"wl-copy", "--clear"}},
		{name: "xclip", env: "DISPLAY", copy: []string{"xclip", "-selection", "clipboard", "-in"}, paste: []string{"xclip", "-selection", "clipboard", "-out"}},
		{name: "xsel", env: "DISPLAY", copy: []string{"xsel", "--clipboard", "--input"}, paste: []string{"xsel", "--clipboard", "--output"}, clear: []string{"xsel", "--clipboard", "--clear"}},
	},
}

func init() {
	for _, goos := range []string{"freebsd", "netbsd", "openbsd", "dragonfly", "solaris", "illumos"} {
		helpers[goos] = helpers["linux"]
	}
}

func newCommandBackend(_ context.Context, opts Options) (backend, error) {
	b := &commandBackend{
		copy:    opts.Copy,
		paste:   opts.Paste,
		clr:     opts.Clear,
		timeout: opts.timeout(),
		log:     opts.Log,
	}
	if len(b.copy) == 0 && len(b.paste) == 0 {
		h, err := findHelper(runtime.GOOS, os.LookupEnv, execabs.LookPath)
		if err != nil {
			return nil, err
		}
		b.copy, b.paste, b.clr = h.copy, h.paste, h.clear
		b.log = b.log.With(slog.String("helper", h.name))
	}
	if len(b.copy) == 0 || len(b.paste) == 0 {
		return nil, errors.New("command strategy requires both copy and paste commands")
	}
	for _, cmd := range [][]string{b.copy, b.paste, b.clr} {
		if len(cmd) == 0 {
			continue
		}
		_, err := execabs.LookPath(cmd[0])
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// findHelper returns the first helper for goos whose environment
// requirement is met and whose commands are all found by lookPath.
func findHelper(goos string, lookupEnv func(string) (string, bool), lookPath func(string) (string, error)) (helper, error) {
	cands, ok := helpers[goos]
	if !ok {
		return helper{}, fmt.Errorf("no clipboard helpers known for %s", goos)
	}
outer:
	for _, h := range cands {
		if h.env != "" {
			v, ok := lookupEnv(h.env)
			if !ok || v == "" {
				continue
			}
		}
		for _, cmd := range [][]string{h.copy, h.paste, h.clear} {
			if len(cmd) == 0 {
				continue
			}
			if _, err := lookPath(cmd[0]); err != nil {
				continue outer
			}
		}
		return h, nil
	}
	return helper{}, errors.New("no clipboard helper found")
}

func (b *commandBackend) set(ctx context.Context, text string) error {
	return b.run(ctx, b.copy, strings.NewReader(text), nil, nil)
}

func (b *commandBackend) get(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer
	err := b.run(ctx, b.paste, nil, &stdout, &stderr)
	if err != nil {
		if stdout.Len() == 0 && isEmptyClipboard(stderr.String()) {
			return "", nil
		}
		return "", err
	}
	return stdout.String(), nil
}

// isEmptyClipboard returns whether msg is a helper's report of an
// empty clipboard.
func isEmptyClipboard(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "nothing is copied") ||
		strings.Contains(msg, "no selection") ||
		strings.Contains(msg, "target string not available")
}

func (b *commandBackend) clear(ctx context.Context) error {
	if len(b.clr) == 0 {
		return b.set(ctx, "")
	}
	return b.run(ctx, b.clr, nil, nil, nil)
}

func (b *commandBackend) close() error { return nil }

// run runs the command args with the given stdin and, if provided,
// stdout and stderr. Copy helpers may leave a child running to serve
// the selection, so output is only collected when asked for.
func (b *commandBackend) run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr *bytes.Buffer) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	cmd := execabs.CommandContext(ctx, args[0], args[1:]...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrTimeout, args[0])
		}
		var msg string
		if stderr != nil {
			msg = strings.TrimSpace(stderr.String())
		}
		b.log.LogAttrs(ctx, slog.LevelDebug, "command failed", slog.Any("args", args), slog.String("stderr", msg), slog.Any("error", err))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}
