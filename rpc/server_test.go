// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/kortschak/jsonrpc2"

	"github.com/kortschak/ice/clipboard"
	"github.com/kortschak/ice/cpu"
	"github.com/kortschak/ice/dl"
	"github.com/kortschak/ice/internal/locked"
	"github.com/kortschak/ice/internal/slogext"
	"github.com/kortschak/ice/internal/version"
	"github.com/kortschak/ice/platform"
	"github.com/kortschak/ice/ram"
)

// fixed is a platform.Capabilities with fixed probe results and a real
// clipboard.
type fixed struct{}

func (fixed) Cores() (cpu.Count, error) {
	return cpu.Count{Logical: 4, Physical: 2, Source: "test", Reliable: true}, nil
}
func (fixed) Arch() cpu.Arch { return cpu.X86_64 }
func (fixed) Memory() (ram.Stats, error) {
	return ram.Stats{Total: 8 << 30, Free: 2 << 30}, nil
}
func (fixed) Limit() (ram.Stats, error)         { return ram.Stats{}, ram.ErrNoLimit }
func (fixed) Load(path string) (*dl.Lib, error) { return dl.Load(path) }
func (fixed) Clipboard(ctx context.Context, opts clipboard.Options) (*clipboard.Clipboard, error) {
	return clipboard.Open(ctx, opts)
}

func newTestServer(t *testing.T, network string, opts clipboard.Options) (*Server, *locked.BytesBuffer) {
	t.Helper()

	logBuf := &locked.BytesBuffer{}
	log := slog.New(slogext.NewJSONHandler(logBuf, &slogext.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: slogext.NewAtomicBool(*lines),
	}))
	t.Cleanup(func() {
		if *verbose {
			t.Logf("log:\n%s\n", logBuf)
		}
	})

	addr := "localhost:0"
	if network == "unix" {
		addr = filepath.Join(t.TempDir(), SocketName)
	}
	srv, err := NewServer(context.Background(), network, addr, fixed{}, opts, log)
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	return srv, logBuf
}

func TestServer(t *testing.T) {
	for _, network := range []string{"unix", "tcp"} {
		t.Run(network, func(t *testing.T) {
			ctx := context.Background()

			opts := clipboard.Options{
				Strategy: "file",
				Path:     filepath.Join(t.TempDir(), "clipboard.txt"),
			}
			srv, logBuf := newTestServer(t, network, opts)
			defer func() {
				err := srv.Close()
				if err != nil {
					t.Errorf("failed to close server: %v", err)
				}
			}()

			client, err := Dial(ctx, network, srv.Addr().String())
			if err != nil {
				t.Fatalf("failed to dial server: %v", err)
			}
			defer client.Close()

			t.Run("who", func(t *testing.T) {
				got, err := client.Who(ctx)
				if err != nil {
					t.Fatalf("failed who call: %v", err)
				}
				want, err := version.String()
				if err != nil {
					want = err.Error()
				}
				if got != want {
					t.Errorf("unexpected version: got:%q want:%q", got, want)
				}
			})

			t.Run("probe", func(t *testing.T) {
				got, err := client.Probe(ctx)
				if err != nil {
					t.Fatalf("failed probe call: %v", err)
				}
				want := platform.Probe(ctx, fixed{})
				if !cmp.Equal(want, got) {
					t.Errorf("unexpected report:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
				}
			})

			t.Run("clipboard", func(t *testing.T) {
				got, err := client.Get(ctx)
				if err != nil {
					t.Fatalf("failed initial get: %v", err)
				}
				if got != "" {
					t.Errorf("unexpected initial clipboard: got:%q want:%q", got, "")
				}

				const text = "hello, 世界\n"
				err = client.Set(ctx, text)
				if err != nil {
					t.Fatalf("failed set: %v", err)
				}
				got, err = client.Get(ctx)
				if err != nil {
					t.Fatalf("failed get: %v", err)
				}
				if got != text {
					t.Errorf("unexpected clipboard: got:%q want:%q", got, text)
				}

				for _, test := range []struct {
					text string
					want bool
				}{
					{text: text, want: true},
					{text: "hello", want: false},
				} {
					ok, err := client.Matches(ctx, test.text)
					if err != nil {
						t.Fatalf("failed matches: %v", err)
					}
					if ok != test.want {
						t.Errorf("unexpected match result for %q: got:%t want:%t", test.text, ok, test.want)
					}
				}

				b, err := os.ReadFile(opts.Path)
				if err != nil {
					t.Fatalf("failed to read clipboard file: %v", err)
				}
				if string(b) != text {
					t.Errorf("unexpected clipboard file content: got:%q want:%q", b, text)
				}

				err = client.Clear(ctx)
				if err != nil {
					t.Fatalf("failed clear: %v", err)
				}
				got, err = client.Get(ctx)
				if err != nil {
					t.Fatalf("failed get after clear: %v", err)
				}
				if got != "" {
					t.Errorf("unexpected clipboard after clear: got:%q want:%q", got, "")
				}

				if len(logBuf.Grep(`"msg":"open clipboard"`)) != 1 {
					t.Errorf("expected exactly one clipboard open in log:\n%s", logBuf)
				}
				if leaked := logBuf.Grep("世界"); len(leaked) != 0 {
					t.Errorf("clipboard text leaked into log:\n%s", strings.Join(leaked, "\n"))
				}
			})

			t.Run("status", func(t *testing.T) {
				got, err := client.Status(ctx)
				if err != nil {
					t.Fatalf("failed status call: %v", err)
				}
				v, err := version.String()
				if err != nil {
					v = err.Error()
				}
				want := ServerStatus{
					Version:  v,
					Network:  network,
					Addr:     srv.Addr().String(),
					Strategy: "file",
				}
				if got.Uptime.Duration < 0 {
					t.Errorf("unexpected negative uptime: %v", got.Uptime)
				}
				if !cmp.Equal(want, got, cmpopts.IgnoreFields(ServerStatus{}, "Uptime")) {
					t.Errorf("unexpected status:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got, cmpopts.IgnoreFields(ServerStatus{}, "Uptime")))
				}
			})

			t.Run("not_handled", func(t *testing.T) {
				var resp Message[string]
				err := client.conn.Call(ctx, "reboot", NewMessage(clientUID, None{})).Await(ctx, &resp)
				if err == nil {
					t.Error("expected error for unknown method")
				}
			})

			t.Run("invalid_message", func(t *testing.T) {
				var resp Message[string]
				err := client.conn.Call(ctx, ClipboardSet, NewMessage(clientUID, 42)).Await(ctx, &resp)
				var werr *jsonrpc2.WireError
				if !errors.As(err, &werr) {
					t.Fatalf("unexpected error type: got:%T want:%T", err, werr)
				}
				if werr.Code != ErrCodeInvalidMessage {
					t.Errorf("unexpected error code: got:%d want:%d", werr.Code, ErrCodeInvalidMessage)
				}
			})

			t.Run("stop", func(t *testing.T) {
				err := client.Stop(ctx)
				if err != nil {
					t.Fatalf("failed stop: %v", err)
				}
				select {
				case <-srv.Done():
				case <-time.After(5 * time.Second):
					t.Error("timed out waiting for stop")
				}
			})
		})
	}
}

func TestServerUnavailableClipboard(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestServer(t, "tcp", clipboard.Options{Strategy: "carrier-pigeon"})
	defer srv.Close()

	client, err := Dial(ctx, "tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("failed to dial server: %v", err)
	}
	defer client.Close()

	_, err = client.Get(ctx)
	var werr *jsonrpc2.WireError
	if !errors.As(err, &werr) {
		t.Fatalf("unexpected error type: got:%T want:%T", err, werr)
	}
	if werr.Code != ErrCodeClipboard {
		t.Errorf("unexpected error code: got:%d want:%d", werr.Code, ErrCodeClipboard)
	}
	var data struct {
		Type   int64  `json:"type"`
		Method string `json:"method"`
	}
	err = json.Unmarshal(werr.Data, &data)
	if err != nil {
		t.Fatalf("unexpected error decoding error data: %v", err)
	}
	if data.Type != ErrCodeNoClipboard || data.Method != ClipboardGet {
		t.Errorf("unexpected error data: got:%+v want type:%d method:%s", data, ErrCodeNoClipboard, ClipboardGet)
	}

	// Probing does not depend on the clipboard.
	_, err = client.Probe(ctx)
	if err != nil {
		t.Errorf("unexpected probe error: %v", err)
	}
}

func TestStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), SocketName)

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	if l, ok := ln.(*net.UnixListener); ok {
		l.SetUnlinkOnClose(false)
	}

	err = removeStale(context.Background(), path)
	if err == nil {
		t.Error("expected error for live socket")
	}

	ln.Close()
	if _, err := os.Lstat(path); err != nil {
		t.Fatalf("expected socket file to remain: %v", err)
	}
	err = removeStale(context.Background(), path)
	if err != nil {
		t.Errorf("unexpected error removing stale socket: %v", err)
	}
	if _, err := os.Lstat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected stat error after removal: got:%v want:%v", err, os.ErrNotExist)
	}
}
