// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

// DefaultPath is the file used by the "file" strategy when no path is given.
// It is relative to the working directory of the process.
const DefaultPath = "ice_clipboard_data.txt"

// lockRetry is the interval between attempts to take the file lock.
const lockRetry = 10 * time.Millisecond

func init() {
	backends["file"] = newFileBackend
}

// fileBackend is a clipboard held in a plain file. Writes replace the
// whole file atomically and readers and writers in other processes are
// coordinated with an advisory lock on a sibling lock file.
type fileBackend struct {
	path    string
	lock    *flock.Flock
	timeout time.Duration
	log     *slog.Logger
}

func newFileBackend(_ context.Context, opts Options) (backend, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", filepath.Dir(path))
	}
	fi, err = os.Stat(path)
	if err == nil && !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return &fileBackend{
		path:    path,
		lock:    flock.New(path + ".lock"),
		timeout: opts.timeout(),
		log:     opts.Log.With(slog.String("path", path)),
	}, nil
}

func (b *fileBackend) set(ctx context.Context, text string) error {
	unlock, err := b.acquire(ctx, b.lock.TryLockContext)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+"-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.WriteString(text)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	err = f.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}
	err = os.Rename(tmp, b.path)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (b *fileBackend) get(ctx context.Context) (string, error) {
	unlock, err := b.acquire(ctx, b.lock.TryRLockContext)
	if err != nil {
		return "", err
	}
	defer unlock()

	text, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (b *fileBackend) clear(ctx context.Context) error {
	return b.set(ctx, "")
}

func (b *fileBackend) close() error {
	return b.lock.Close()
}

// acquire takes the file lock using try, waiting at most the backend's
// timeout.
func (b *fileBackend) acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) (unlock func(), _ error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	ok, err := try(ctx, lockRetry)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waiting for %s", ErrTimeout, b.lock.Path())
		}
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: waiting for %s", ErrTimeout, b.lock.Path())
	}
	return func() {
		err := b.lock.Unlock()
		if err != nil {
			b.log.LogAttrs(context.Background(), slog.LevelWarn, "unlock", slog.Any("error", err))
		}
	}, nil
}

// notify watches the directory holding the clipboard file since
// updates replace the file. The poll interval is not used.
func (b *fileBackend) notify(ctx context.Context, events chan<- struct{}, _ time.Duration, ready func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	err = w.Add(filepath.Dir(b.path))
	if err != nil {
		return err
	}
	ready()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != b.path {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			select {
			case events <- struct{}{}:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.log.LogAttrs(ctx, slog.LevelWarn, "watch", slog.Any("error", err))
		}
	}
}
