package repository

import (
	"context"
	"log/slog"
	"sync"

	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/structure"
)

// Connection owns a driver.Client and hands out one *DB per database name.
// Handles are opened on first use and reused afterwards.
type Connection struct {
	client driver.Client
	opts   []Option
	logger *slog.Logger

	mu  sync.Mutex
	dbs map[string]*DB
}

// NewConnection wraps client. opts are applied to every DB it opens.
func NewConnection(client driver.Client, opts ...Option) *Connection {
	return &Connection{
		client: client,
		opts:   opts,
		logger: newSettings(opts).logger,
		dbs:    make(map[string]*DB),
	}
}

func (c *Connection) Client() driver.Client { return c.client }

// DB returns the handle for name, opening it if needed.
func (c *Connection) DB(ctx context.Context, name string) (*DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.dbs[name]; ok {
		return db, nil
	}
	raw, err := c.client.Database(ctx, name)
	if err != nil {
		return nil, err
	}
	db := New(raw, c.opts...)
	c.dbs[name] = db
	c.logger.DebugContext(ctx, "database opened", "db", name)
	return db, nil
}

func (c *Connection) DatabaseExists(ctx context.Context, name string) (bool, error) {
	return c.client.DatabaseExists(ctx, name)
}

// DropDatabase drops name and forgets its handle.
func (c *Connection) DropDatabase(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.DropDatabase(ctx, name); err != nil {
		return err
	}
	delete(c.dbs, name)
	c.logger.InfoContext(ctx, "database dropped", "db", name)
	return nil
}

// CreateDBStructure creates whatever part of s is missing.
func (c *Connection) CreateDBStructure(ctx context.Context, s structure.DBStructure) (structure.Result, error) {
	res, err := structure.Create(ctx, c.client, s)
	if err != nil {
		return res, err
	}
	c.logResult(ctx, res)
	return res, nil
}

// ValidateDBStructure reports which parts of s exist.
func (c *Connection) ValidateDBStructure(ctx context.Context, s structure.DBStructure) (structure.Result, error) {
	res, err := structure.Validate(ctx, c.client, s)
	if err != nil {
		return res, err
	}
	c.logResult(ctx, res)
	return res, nil
}

func (c *Connection) logResult(ctx context.Context, res structure.Result) {
	level := slog.LevelInfo
	if !res.OK() {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, res.Message, "db", res.Database.Name, "status", res.Database.Status)
}
