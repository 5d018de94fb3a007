// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slogext provides slog helpers.
package slogext

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/kortschak/goroutine"
	"github.com/kortschak/jsonrpc2"
)

// GoID is a slog.Handler that adds the calling goroutine's ID to each
// record as "goid".
type GoID struct {
	slog.Handler
}

func (h GoID) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.Int64("goid", goroutine.ID()))
	return h.Handler.Handle(ctx, r)
}

func (h GoID) WithAttrs(attrs []slog.Attr) slog.Handler {
	return GoID{h.Handler.WithAttrs(attrs)}
}

func (h GoID) WithGroup(name string) slog.Handler {
	return GoID{h.Handler.WithGroup(name)}
}

// Stringer implements slog.LogValuer for [fmt.Stringer].
type Stringer struct {
	fmt.Stringer
}

func (v Stringer) LogValue() slog.Value {
	if v.Stringer == nil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(v.String())
}

// Request implements slog.LogValuer for [jsonrpc2.Request]. The request
// parameters are logged as a [Text] summary.
type Request struct {
	*jsonrpc2.Request
}

func (v Request) LogValue() slog.Value {
	if v.Request == nil {
		return slog.StringValue("<nil>")
	}
	attrs := []slog.Attr{slog.String("method", v.Method)}
	if v.IsCall() {
		attrs = append(attrs, slog.Any("id", v.ID.Raw()))
	}
	// Parameters may hold clipboard text, so only summarise them.
	return slog.GroupValue(append(attrs, slog.Any("params", Text(v.Params)))...)
}

// Text implements slog.LogValuer for clipboard text. It logs the length
// and a short hash of the text rather than the text itself.
type Text string

func (v Text) LogValue() slog.Value {
	sum := sha256.Sum256([]byte(v))
	return slog.GroupValue(
		slog.Int("len", len(v)),
		slog.String("sha256", hex.EncodeToString(sum[:8])),
	)
}

// JSONHandler is a slog.Handler that writes Records to an io.Writer as
// line-delimited JSON objects. Unlike [slog.JSONHandler], inclusion of
// the source position may be switched on and off after construction.
type JSONHandler struct {
	*slog.JSONHandler
}

// NewJSONHandler creates a JSONHandler that writes to w, using the given
// options. If opts is nil, the default options are used.
func NewJSONHandler(w io.Writer, opts *HandlerOptions) JSONHandler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	addSource := opts.AddSource
	if addSource == nil {
		addSource = &atomic.Bool{}
	}
	replace := opts.ReplaceAttr
	return JSONHandler{slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     opts.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.SourceKey && !addSource.Load() {
				return slog.Attr{}
			}
			if replace == nil {
				return a
			}
			return replace(groups, a)
		},
	})}
}

func (h JSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return JSONHandler{h.JSONHandler.WithAttrs(attrs).(*slog.JSONHandler)}
}

func (h JSONHandler) WithGroup(name string) slog.Handler {
	return JSONHandler{h.JSONHandler.WithGroup(name).(*slog.JSONHandler)}
}

// HandlerOptions are options for a JSONHandler. They follow
// [slog.HandlerOptions] except that AddSource is shared and may be
// changed while the handler is in use.
type HandlerOptions struct {
	// AddSource causes the handler to add the source code position
	// of the log statement. A nil AddSource is false.
	AddSource *atomic.Bool

	// Level reports the minimum record level that will be logged.
	Level slog.Leveler

	// ReplaceAttr is called to rewrite each non-group attribute before
	// it is logged.
	ReplaceAttr func(groups []string, a slog.Attr) slog.Attr
}

// NewAtomicBool returns an atomic.Bool holding t.
func NewAtomicBool(t bool) *atomic.Bool {
	var x atomic.Bool
	x.Store(t)
	return &x
}
