// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/jackc/pgx/v5"
)

// PostgresSchema is the PostgreSQL history schema.
const PostgresSchema = `
create table if not exists history (
	id       BIGSERIAL PRIMARY KEY,
	time     TIMESTAMP WITH TIME ZONE NOT NULL,
	strategy TEXT NOT NULL,
	text     TEXT NOT NULL
);
`

const (
	pgLast = `
select text from history order by id desc limit 1;
`

	pgInsert = `
insert into history (time, strategy, text) values ($1, $2, $3);
`

	pgRecent = `
select time, strategy, text from history order by id desc limit $1;
`

	pgAll = `
select time, strategy, text from history order by id desc;
`
)

// pgx.Conn is not safe for concurrent use, so access is serialised.
type postgresStore struct {
	mu    sync.Mutex
	store *pgx.Conn
	log   *slog.Logger
}

func openPostgres(ctx context.Context, name string, log *slog.Logger) (*postgresStore, error) {
	db, err := pgx.Connect(ctx, name)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(ctx, PostgresSchema)
	if err != nil {
		return nil, errors.Join(err, db.Close(ctx))
	}
	log.LogAttrs(ctx, slog.LevelDebug, "open", slog.String("driver", "pgx"), slog.String("name", redact(name)))
	return &postgresStore{store: db, log: log}, nil
}

// redact returns name without its password.
func redact(name string) string {
	u, err := url.Parse(name)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

func txDone(ctx context.Context, tx pgx.Tx, err *error) {
	if *err == nil {
		*err = tx.Commit(ctx)
	} else {
		*err = errors.Join(*err, tx.Rollback(ctx))
	}
}

func (db *postgresStore) Record(ctx context.Context, e Entry) (err error) {
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
	tx, err := db.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer txDone(ctx, tx, &err)

	var last string
	err = tx.QueryRow(ctx, pgLast).Scan(&last)
	switch {
	case err == nil:
		if last == e.Text {
			db.log.LogAttrs(ctx, slog.LevelDebug, "record duplicate")
			return nil
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return err
	}
	_, err = tx.Exec(ctx, pgInsert, e.Time, e.Strategy, e.Text)
	return err
}

func (db *postgresStore) Recent(ctx context.Context, n int) ([]Entry, error) {
	db.log.LogAttrs(ctx, slog.LevelDebug, "recent", slog.Int("n", n))
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.store == nil {
		return nil, ErrClosed
	}
	var (
		rows pgx.Rows
		err  error
	)
	if n > 0 {
		rows, err = db.store.Query(ctx, pgRecent, n)
	} else {
		rows, err = db.store.Query(ctx, pgAll)
	}
	if err != nil {
		db.log.LogAttrs(ctx, slog.LevelError, "recent", slog.Any("error", err))
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		err = rows.Scan(&e.Time, &e.Strategy, &e.Text)
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *postgresStore) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.store == nil {
		return ErrClosed
	}
	err := db.store.Close(context.Background())
	db.store = nil
	return err
}
