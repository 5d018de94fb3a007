// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clipboard provides access to the system clipboard's text content.
//
// A Clipboard is backed by one of a set of platform strategies. Which
// strategies are available depends on the build; Strategies lists them in
// preference order. The "file" strategy is always available and stores the
// clipboard content in a plain file, allowing processes to share a
// clipboard on hosts without a system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kortschak/ice/internal/slogext"
)

var (
	// ErrUnknownStrategy is returned by Open when the requested
	// strategy is not available in the build.
	ErrUnknownStrategy = errors.New("unknown clipboard strategy")

	// ErrUnavailable is returned by Open when no requested strategy
	// could be started on the host.
	ErrUnavailable = errors.New("clipboard unavailable")

	// ErrClosed is returned by operations on a closed Clipboard.
	ErrClosed = errors.New("clipboard closed")

	// ErrNotReady is returned by operations on a Clipboard that was
	// not obtained from Open.
	ErrNotReady = errors.New("clipboard not initialized")

	// ErrTimeout is returned when the host clipboard did not respond
	// within the configured timeout.
	ErrTimeout = errors.New("clipboard timeout")
)

// DefaultTimeout is the default bound on waits for other clipboard clients.
const DefaultTimeout = 30 * time.Second

// Options holds the parameters used to open a Clipboard.
type Options struct {
	// Strategy is the name of the backend to use. If empty,
	// the build's strategies are tried in preference order.
	Strategy string `json:"strategy,omitempty"`

	// Path is the file used by the "file" strategy.
	// If empty, DefaultPath is used.
	Path string `json:"path,omitempty"`

	// Timeout bounds waits for other clipboard clients.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Copy, Paste and Clear are the commands used by the
	// "command" strategy. If Copy and Paste are empty, a
	// host helper is searched for.
	Copy  []string `json:"copy,omitempty"`
	Paste []string `json:"paste,omitempty"`
	Clear []string `json:"clear,omitempty"`

	// Log is the logger used by the Clipboard. If nil,
	// logging is discarded.
	Log *slog.Logger `json:"-"`
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// State is the lifecycle state of a Clipboard.
type State int

const (
	Uninitialized State = iota
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// backend is a clipboard strategy implementation. Calls are serialized
// by the owning Clipboard.
type backend interface {
	set(ctx context.Context, text string) error
	get(ctx context.Context) (string, error)
	clear(ctx context.Context) error
	close() error
}

// backends is the registry of strategies available in the build.
// It is populated by the init functions of each strategy.
var backends = map[string]func(context.Context, Options) (backend, error){}

// Strategies returns the names of the strategies available in the
// build in the order they are tried by Open.
func Strategies() []string {
	var names []string
	for _, n := range preference {
		if _, ok := backends[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// Clipboard is a handle to a clipboard. It is safe for concurrent use.
type Clipboard struct {
	mu       sync.Mutex
	state    State
	strategy string
	backend  backend
	opts     Options
	log      *slog.Logger
}

// Open returns a ready Clipboard using the strategy named in opts, or the
// first available strategy if none is named.
func Open(ctx context.Context, opts Options) (*Clipboard, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts.Log = log.With(slog.String("component", "clipboard"))

	if opts.Strategy != "" {
		newBackend, ok := backends[opts.Strategy]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStrategy, opts.Strategy, Strategies())
		}
		b, err := newBackend(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, opts.Strategy, err)
		}
		return newClipboard(ctx, opts.Strategy, b, opts), nil
	}

	var errs []error
	for _, name := range Strategies() {
		b, err := backends[name](ctx, opts)
		if err != nil {
			opts.Log.LogAttrs(ctx, slog.LevelDebug, "strategy unavailable", slog.String("strategy", name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		return newClipboard(ctx, name, b, opts), nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func newClipboard(ctx context.Context, name string, b backend, opts Options) *Clipboard {
	log := opts.Log.With(slog.String("strategy", name))
	log.LogAttrs(ctx, slog.LevelDebug, "open")
	return &Clipboard{
		state:    Ready,
		strategy: name,
		backend:  b,
		opts:     opts,
		log:      log,
	}
}

// Strategy returns the name of the strategy backing the clipboard.
func (c *Clipboard) Strategy() string { return c.strategy }

// State returns the current state of the clipboard.
func (c *Clipboard) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clipboard) ready() error {
	switch c.state {
	case Ready:
		return nil
	case Closed:
		return ErrClosed
	default:
		return ErrNotReady
	}
}

// Set replaces the clipboard content with text.
func (c *Clipboard) Set(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return err
	}
	err := c.backend.set(ctx, text)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "set", slog.Any("text", slogext.Text(text)), slog.Any("error", err))
		return err
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "set", slog.Any("text", slogext.Text(text)))
	return nil
}

// Get returns the current clipboard content. An empty clipboard
// returns the empty string and a nil error.
func (c *Clipboard) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return "", err
	}
	text, err := c.backend.get(ctx)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "get", slog.Any("error", err))
		return "", err
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "get", slog.Any("text", slogext.Text(text)))
	return text, nil
}

// Matches returns whether the clipboard content is equal to text.
func (c *Clipboard) Matches(ctx context.Context, text string) (bool, error) {
	got, err := c.Get(ctx)
	if err != nil {
		return false, err
	}
	return got == text, nil
}

// Clear empties the clipboard.
func (c *Clipboard) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return err
	}
	err := c.backend.clear(ctx)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "clear", slog.Any("error", err))
		return err
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "clear")
	return nil
}

// Close releases the resources held by the clipboard. Calling Close
// on a closed clipboard is a no-op.
func (c *Clipboard) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return nil
	}
	c.state = Closed
	err := c.backend.close()
	c.backend = nil
	c.log.LogAttrs(context.Background(), slog.LevelDebug, "close", slog.Any("error", err))
	return err
}

// String returns a description of the clipboard.
func (c *Clipboard) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.strategy == "" {
		return "clipboard(" + c.state.String() + ")"
	}
	return "clipboard(" + c.strategy + ", " + c.state.String() + ")"
}

