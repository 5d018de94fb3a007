// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kortschak/jsonrpc2"

	"github.com/kortschak/ice/clipboard"
	"github.com/kortschak/ice/internal/slogext"
	"github.com/kortschak/ice/internal/version"
	"github.com/kortschak/ice/internal/xdg"
	"github.com/kortschak/ice/platform"
)

// RuntimeDir is the path within the user's runtime directory that unix
// sockets are created in if no address is given.
const RuntimeDir = "ice"

// SocketName is the name of the default unix socket.
const SocketName = "ice.sock"

var serverUID = UID{Module: "ice", Service: "rpc"}

// Server is a JSON RPC 2 server providing host capability queries and
// clipboard access.
type Server struct {
	listener *netListener
	server   *jsonrpc2.Server
	network  string
	start    time.Time

	caps platform.Capabilities
	opts clipboard.Options

	log *slog.Logger

	cMu  sync.Mutex
	clip *clipboard.Clipboard

	stop     chan struct{}
	stopOnce sync.Once
}

// DefaultAddr returns the default listen address for network. For the
// unix network this is a socket in the user's runtime directory.
func DefaultAddr(network string) (string, error) {
	switch network {
	case "unix":
		dir, _ := xdg.RuntimeDir()
		dir = filepath.Join(dir, RuntimeDir)
		err := os.MkdirAll(dir, 0o700)
		if err != nil {
			return "", fmt.Errorf("failed to create runtime directory: %w", err)
		}
		return filepath.Join(dir, SocketName), nil
	case "tcp":
		return "localhost:0", nil
	default:
		return "", fmt.Errorf("invalid network: %q", network)
	}
}

// NewServer returns a new Server listening on the provided network, which
// may be either "unix" or "tcp", at addr. If network is empty, "unix" is
// used and if addr is empty, the address returned by DefaultAddr is used.
// The clipboard described by opts is opened on the first clipboard call.
func NewServer(ctx context.Context, network, addr string, caps platform.Capabilities, opts clipboard.Options, log *slog.Logger) (*Server, error) {
	if network == "" {
		network = "unix"
	}
	if addr == "" {
		var err error
		addr, err = DefaultAddr(network)
		if err != nil {
			return nil, err
		}
	}
	if caps == nil {
		caps = platform.Host()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Log == nil {
		opts.Log = log
	}
	s := &Server{
		network: network,
		start:   time.Now(),
		caps:    caps,
		opts:    opts,
		log:     log.With(slog.String("component", serverUID.String())),
		stop:    make(chan struct{}),
	}

	var err error
	s.listener, err = listen(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	s.server = jsonrpc2.NewServer(ctx, s.listener, s)

	s.log.LogAttrs(ctx, slog.LevelInfo, "new server", slog.String("network", network), slog.Any("addr", slogext.Stringer{Stringer: s.listener.Addr()}))
	return s, nil
}

// Addr returns the listener address of the server.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Done returns a channel that is closed when a stop notification has been
// received or the server has been closed.
func (s *Server) Done() <-chan struct{} {
	return s.stop
}

func (s *Server) signalStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Close stops the server and releases its clipboard.
func (s *Server) Close() error {
	ctx := context.Background()
	s.log.LogAttrs(ctx, slog.LevelDebug, "close")
	s.signalStop()
	s.server.Shutdown()
	err := s.server.Wait()
	s.cMu.Lock()
	if s.clip != nil {
		err = errors.Join(err, s.clip.Close())
		s.clip = nil
	}
	s.cMu.Unlock()
	return err
}

// Bind binds the server's handler to a connection.
func (s *Server) Bind(ctx context.Context, conn *jsonrpc2.Connection) jsonrpc2.ConnectionOptions {
	s.log.LogAttrs(ctx, slog.LevelDebug, "binding")
	return jsonrpc2.ConnectionOptions{
		Handler: s,
	}
}

// Handle is the server's message handler.
func (s *Server) Handle(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	s.log.LogAttrs(ctx, slog.LevelDebug, "handle", slog.Any("req", slogext.Request{Request: req}))

	if req.Method == Stop {
		if req.IsCall() {
			s.log.LogAttrs(ctx, slog.LevelWarn, "stop called as call")
		}
		s.log.LogAttrs(ctx, slog.LevelInfo, "stop requested")
		s.signalStop()
		if req.IsCall() {
			return NewMessage(serverUID, "done"), nil
		}
		return nil, nil
	}
	if !req.IsCall() {
		s.log.LogAttrs(ctx, slog.LevelWarn, "unexpected notification", slog.String("method", req.Method))
		return nil, jsonrpc2.ErrNotHandled
	}

	switch req.Method {
	case Who:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		v, err := version.String()
		if err != nil {
			v = err.Error()
		}
		return NewMessage(serverUID, v), nil

	case Probe:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		return NewMessage(serverUID, platform.Probe(ctx, s.caps)), nil

	case Status:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		return NewMessage(serverUID, s.status()), nil

	case ClipboardGet:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		clip, err := s.clipboard(ctx)
		if err != nil {
			return nil, clipboardError(req.Method, err)
		}
		text, err := clip.Get(ctx)
		if err != nil {
			return nil, AddWireErrorDetail(clipboardError(req.Method, err), map[string]any{"strategy": clip.Strategy()})
		}
		return NewMessage(serverUID, text), nil

	case ClipboardSet:
		var m Message[string]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		clip, err := s.clipboard(ctx)
		if err != nil {
			return nil, clipboardError(req.Method, err)
		}
		err = clip.Set(ctx, m.Body)
		if err != nil {
			return nil, AddWireErrorDetail(clipboardError(req.Method, err), map[string]any{"strategy": clip.Strategy()})
		}
		return NewMessage(serverUID, "done"), nil

	case ClipboardClear:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		clip, err := s.clipboard(ctx)
		if err != nil {
			return nil, clipboardError(req.Method, err)
		}
		err = clip.Clear(ctx)
		if err != nil {
			return nil, AddWireErrorDetail(clipboardError(req.Method, err), map[string]any{"strategy": clip.Strategy()})
		}
		return NewMessage(serverUID, "done"), nil

	case ClipboardMatches:
		var m Message[string]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		clip, err := s.clipboard(ctx)
		if err != nil {
			return nil, clipboardError(req.Method, err)
		}
		ok, err := clip.Matches(ctx, m.Body)
		if err != nil {
			return nil, AddWireErrorDetail(clipboardError(req.Method, err), map[string]any{"strategy": clip.Strategy()})
		}
		return NewMessage(serverUID, ok), nil

	default:
		return nil, jsonrpc2.ErrNotHandled
	}
}

// clipboard returns the server's clipboard, opening it if necessary.
func (s *Server) clipboard(ctx context.Context) (*clipboard.Clipboard, error) {
	s.cMu.Lock()
	defer s.cMu.Unlock()
	if s.clip != nil {
		return s.clip, nil
	}
	clip, err := s.caps.Clipboard(ctx, s.opts)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "open clipboard", slog.Any("error", err))
		return nil, err
	}
	s.log.LogAttrs(ctx, slog.LevelInfo, "open clipboard", slog.String("strategy", clip.Strategy()))
	s.clip = clip
	return clip, nil
}

// status returns the current server status.
func (s *Server) status() ServerStatus {
	v, err := version.String()
	if err != nil {
		v = err.Error()
	}
	st := ServerStatus{
		Version: v,
		Network: s.network,
		Addr:    s.listener.Addr().String(),
		Uptime:  Duration{time.Since(s.start).Round(time.Millisecond)},
	}
	s.cMu.Lock()
	if s.clip != nil {
		st.Strategy = s.clip.Strategy()
	}
	s.cMu.Unlock()
	return st
}

// clipboardError returns a wire error for a failed clipboard operation.
// The data type field holds the clipboard sub-code if err is a known
// clipboard error.
func clipboardError(method string, err error) error {
	data := map[string]any{"method": method}
	switch {
	case errors.Is(err, clipboard.ErrUnknownStrategy), errors.Is(err, clipboard.ErrUnavailable):
		data["type"] = ErrCodeNoClipboard
	case errors.Is(err, clipboard.ErrTimeout):
		data["type"] = ErrCodeClipboardTimeout
	case errors.Is(err, clipboard.ErrClosed):
		data["type"] = ErrCodeClipboardClosed
	}
	return NewError(ErrCodeClipboard, err.Error(), data)
}
