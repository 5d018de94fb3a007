// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	// For sql.DB registration.
	_ "modernc.org/sqlite"
)

// SQLiteSchema is the SQLite history schema. Times are stored as
// Unix nanoseconds.
const SQLiteSchema = `
create table if not exists history(
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	time     INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	text     TEXT NOT NULL
);
`

const (
	sqliteLast = `
select text from history order by id desc limit 1;
`

	sqliteInsert = `
insert into history(time, strategy, text) values(?, ?, ?);
`

	sqliteRecent = `
select time, strategy, text from history order by id desc limit ?;
`
)

type sqliteStore struct {
	mu    sync.Mutex
	store *sql.DB
	log   *slog.Logger
}

func openSQLite(ctx context.Context, name string, log *slog.Logger) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, err
	}
	_, err = db.ExecContext(ctx, SQLiteSchema)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	log.LogAttrs(ctx, slog.LevelDebug, "open", slog.String("driver", "sqlite"), slog.String("name", name))
	return &sqliteStore{store: db, log: log}, nil
}

func (db *sqliteStore) Record(ctx context.Context, e Entry) (err error) {
	db.log.LogAttrs(ctx, slog.LevelDebug, "record", slog.Any("entry", e))
	db.mu.Lock()
	defer func() {
		db.mu.Unlock()
		if err != nil {
			db.log.LogAttrs(ctx, slog.LevelError, "record", slog.Any("error", err))
		}
	}()
	if db.store == nil {
		return ErrClosed
	}
	tx, err := db.store.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var last string
	err = tx.QueryRowContext(ctx, sqliteLast).Scan(&last)
	switch {
	case err == nil:
		if last == e.Text {
			db.log.LogAttrs(ctx, slog.LevelDebug, "record duplicate")
			return tx.Rollback()
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return errors.Join(err, tx.Rollback())
	}
	_, err = tx.ExecContext(ctx, sqliteInsert, e.Time.UnixNano(), e.Strategy, e.Text)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

func (db *sqliteStore) Recent(ctx context.Context, n int) ([]Entry, error) {
	db.log.LogAttrs(ctx, slog.LevelDebug, "recent", slog.Int("n", n))
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.store == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		// A negative limit is no limit in SQLite.
		n = -1
	}
	rows, err := db.store.QueryContext(ctx, sqliteRecent, n)
	if err != nil {
		db.log.LogAttrs(ctx, slog.LevelError, "recent", slog.Any("error", err))
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			nsec int64
			e    Entry
		)
		err = rows.Scan(&nsec, &e.Strategy, &e.Text)
		if err != nil {
			return entries, err
		}
		e.Time = time.Unix(0, nsec)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *sqliteStore) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.store == nil {
		return ErrClosed
	}
	err := db.store.Close()
	db.store = nil
	return err
}
