// Package repository offers a thin façade on top of the query builders and
// the driver. It follows the functional-options pattern so callers keep code
// terse while the builders stay available for anything more involved.
//
//	db := repository.New(database, repository.WithLogger(logger))
//	riders, err := db.FindByFilterCriteria(ctx, "cyclists",
//	    query.RawFilter(`name == "Lance" || name == "Chris"`),
//	    repository.SortAsc("name"),
//	    repository.TrimPrivate(),
//	)
package repository

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/distributhor/arangotools/cache"
	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/internal"
	"github.com/distributhor/arangotools/query"
	"github.com/distributhor/arangotools/scan"
)

// DB is the handle callers inject everywhere. It is safe for concurrent use
// when the underlying driver.Database is.
type DB struct {
	db     driver.Database
	cache  cache.Store
	logger *slog.Logger
}

type Option func(*settings)

type settings struct {
	logger *slog.Logger
	cache  cache.Store
}

// WithLogger logs every executed query at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithCache enables the Cached read option.
func WithCache(c cache.Store) Option {
	return func(s *settings) { s.cache = c }
}

func newSettings(opts []Option) settings {
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// New wraps db.
func New(db driver.Database, opts ...Option) *DB {
	s := newSettings(opts)
	return &DB{
		db:     db,
		cache:  s.cache,
		logger: s.logger.With("db", db.Name()),
	}
}

func (r *DB) Name() string { return r.db.Name() }

// Driver exposes the wrapped database for operations the façade lacks.
func (r *DB) Driver() driver.Database { return r.db }

// -------------------------------------------------------------------
// Raw queries
// -------------------------------------------------------------------

// Cursor is a lazy result. Rows are fetched from the server in batches as
// they are read and trimmed on the way out.
type Cursor struct {
	cur  driver.Cursor
	trim scan.Trim
}

func (c *Cursor) HasMore() bool { return c.cur.HasMore() }

// Next reads one document.
func (c *Cursor) Next(ctx context.Context) (scan.Document, error) {
	var doc scan.Document
	if err := c.cur.ReadDocument(ctx, &doc); err != nil {
		return nil, err
	}
	return c.trim.Apply(doc), nil
}

// All drains and closes the cursor.
func (c *Cursor) All(ctx context.Context) ([]scan.Document, error) {
	return scan.ReadAll(ctx, c.cur, c.trim)
}

func (c *Cursor) Close() error { return c.cur.Close() }

// Query executes aql and returns a lazy cursor the caller must close.
func (r *DB) Query(ctx context.Context, aql query.AQL, opts ...Opt) (*Cursor, error) {
	fo := collect(query.MatchAny, opts)
	cur, err := r.exec(ctx, aql)
	if err != nil {
		return nil, err
	}
	return &Cursor{cur: cur, trim: fo.trim}, nil
}

// ReturnAll executes aql and materializes every row.
func (r *DB) ReturnAll(ctx context.Context, aql query.AQL, opts ...Opt) ([]scan.Document, error) {
	return r.returnAll(ctx, aql, collect(query.MatchAny, opts))
}

// ReturnOne executes aql and returns its first row, or nil when there is none.
func (r *DB) ReturnOne(ctx context.Context, aql query.AQL, opts ...Opt) (scan.Document, error) {
	return r.returnOne(ctx, aql, collect(query.MatchAny, opts))
}

func (r *DB) exec(ctx context.Context, aql query.AQL) (driver.Cursor, error) {
	r.logger.DebugContext(ctx, "executing aql",
		"query", aql.Query,
		"bind_vars", internal.SortedKeys(aql.BindVars),
	)
	cur, err := r.db.Query(ctx, aql.Query, aql.BindVars)
	if err != nil {
		r.logger.ErrorContext(ctx, "aql failed", "query", aql.Query, "error", err)
		return nil, err
	}
	return cur, nil
}

func (r *DB) returnOne(ctx context.Context, aql query.AQL, fo fetchOptions) (scan.Document, error) {
	cur, err := r.exec(ctx, aql)
	if err != nil {
		return nil, err
	}
	return scan.ReadOne(ctx, cur, fo.trim)
}

func (r *DB) returnAll(ctx context.Context, aql query.AQL, fo fetchOptions) ([]scan.Document, error) {
	if fo.cacheTTL <= 0 || r.cache == nil {
		cur, err := r.exec(ctx, aql)
		if err != nil {
			return nil, err
		}
		return scan.ReadAll(ctx, cur, fo.trim)
	}

	// Cached rows are stored untrimmed so one entry serves every trim.
	key, err := cache.Key(r.Name(), aql)
	if err != nil {
		return nil, err
	}
	if docs, ok := r.cached(ctx, key); ok {
		return trimAll(docs, fo.trim), nil
	}

	cur, err := r.exec(ctx, aql)
	if err != nil {
		return nil, err
	}
	docs, err := scan.ReadAll(ctx, cur, scan.Trim{})
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, docs, fo.cacheTTL)
	return trimAll(docs, fo.trim), nil
}

// cached reports a miss on any cache failure; the database stays the
// source of truth.
func (r *DB) cached(ctx context.Context, key string) ([]scan.Document, bool) {
	b, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var docs []scan.Document
	if err := json.Unmarshal(b, &docs); err != nil {
		r.logger.WarnContext(ctx, "cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	r.logger.DebugContext(ctx, "cache hit", "key", key, "rows", len(docs))
	return docs, true
}

func (r *DB) store(ctx context.Context, key string, docs []scan.Document, ttl time.Duration) {
	b, err := json.Marshal(docs)
	if err != nil {
		r.logger.WarnContext(ctx, "cannot encode rows for cache", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, b, ttl); err != nil {
		r.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

func trimAll(docs []scan.Document, t scan.Trim) []scan.Document {
	return internal.Map(docs, t.Apply)
}
