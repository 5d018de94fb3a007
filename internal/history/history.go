// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history provides persistence of clipboard history.
package history

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kortschak/ice/internal/slogext"
)

// Entry is a clipboard history entry.
type Entry struct {
	Time     time.Time `json:"time"`
	Strategy string    `json:"strategy"`
	Text     string    `json:"text"`
}

// LogValue implements slog.LogValuer. The entry's text is not logged.
func (e Entry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Time("time", e.Time),
		slog.String("strategy", e.Strategy),
		slog.Any("text", slogext.Text(e.Text)),
	)
}

// Store is a clipboard history store.
type Store interface {
	// Record adds e to the store. If the most recently recorded
	// entry has the same text as e, Record does nothing.
	Record(ctx context.Context, e Entry) error
	// Recent returns up to n of the most recently recorded entries,
	// newest first. If n is not positive, all entries are returned.
	Recent(ctx context.Context, n int) ([]Entry, error)
	// Close closes the store.
	Close() error
}

// ErrClosed is returned by Store methods after the store has been closed.
var ErrClosed = errors.New("history store closed")

// Open opens a history store, creating its tables if required. DSNs
// with a postgres:// or postgresql:// scheme are opened as PostgreSQL
// databases, see [pgx.Connect] for name handling details. All other
// DSNs are opened as SQLite databases, see [modernc.org/sqlite.Driver.Open].
//
// [pgx.Connect]: https://pkg.go.dev/github.com/jackc/pgx/v5#Connect
// [modernc.org/sqlite.Driver.Open]: https://pkg.go.dev/modernc.org/sqlite#Driver.Open
func Open(ctx context.Context, dsn string, log *slog.Logger) (Store, error) {
	if dsn == "" {
		return nil, errors.New("missing history dsn")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(slog.String("component", "history"))
	if isPostgres(dsn) {
		return openPostgres(ctx, dsn, log)
	}
	return openSQLite(ctx, dsn, log)
}

func isPostgres(dsn string) bool {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}
