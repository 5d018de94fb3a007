// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clipboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultPoll is the polling interval used by Watch for strategies
// without change notification.
const DefaultPoll = 500 * time.Millisecond

// Change is a clipboard content change.
type Change struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
	Err  error     `json:"-"`
}

// notifier is implemented by backends that can signal content changes.
// notify calls ready once it is able to observe changes and then sends on
// events when the content may have changed, returning when ctx is done.
// Backends that sample a change counter do so at the poll interval.
type notifier interface {
	notify(ctx context.Context, events chan<- struct{}, poll time.Duration, ready func()) error
}

// Watch sends a Change on changes whenever the clipboard content differs
// from the previously observed content. The content at the start of the
// watch is not reported. Strategies that provide change notification are
// watched directly; others are polled at the given interval, or DefaultPoll
// if poll is not positive. Read errors are sent as a Change with a non-nil
// Err and watching continues. Watch returns when ctx is done or the
// clipboard is closed.
func (c *Clipboard) Watch(ctx context.Context, changes chan<- Change, poll time.Duration) error {
	c.mu.Lock()
	err := c.ready()
	b := c.backend
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if poll <= 0 {
		poll = DefaultPoll
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan struct{}, 1)
	notifyErr := make(chan error, 1)
	ready := make(chan struct{})
	n, ok := b.(notifier)
	if ok {
		var once sync.Once
		go func() {
			notifyErr <- n.notify(ctx, events, poll, func() { once.Do(func() { close(ready) }) })
		}()
	} else {
		close(ready)
		go func() {
			ticker := time.NewTicker(poll)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					notifyErr <- nil
					return
				case <-ticker.C:
					select {
					case events <- struct{}{}:
					default:
					}
				}
			}
		}()
	}

	// Take the starting content only once changes can be observed
	// so that no change is lost between the two.
	select {
	case <-ready:
	case err := <-notifyErr:
		if err == nil {
			err = ctx.Err()
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
	last, err := c.Get(ctx)
	if err != nil {
		return err
	}

	c.log.LogAttrs(ctx, slog.LevelDebug, "watch", slog.Bool("notify", ok), slog.Duration("poll", poll))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-notifyErr:
			if err != nil && ctx.Err() == nil {
				return err
			}
			return ctx.Err()
		case <-events:
			text, err := c.Get(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrClosed) {
				return err
			}
			if err == nil && text == last {
				continue
			}
			ch := Change{Time: time.Now(), Text: text, Err: err}
			if err == nil {
				last = text
			}
			select {
			case changes <- ch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
