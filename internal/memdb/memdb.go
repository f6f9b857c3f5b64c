// Package memdb is an in-memory driver.Client for tests. Documents,
// collections and graphs are kept in maps; AQL is not interpreted, so
// Query replays rows queued with Respond and records what it was given.
package memdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	arango "github.com/arangodb/go-driver"

	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/internal"
)

var _ driver.Client = (*Client)(nil)
var _ driver.Database = (*Database)(nil)

// ErrDuplicate is returned when creating something that already exists.
var ErrDuplicate = errors.New("memdb: duplicate name")

func notFound(what string) error {
	return arango.ArangoError{HasError: true, Code: 404, ErrorNum: 1202, ErrorMessage: what + " not found"}
}

// ------------------------------------------------------------------
// Client
// ------------------------------------------------------------------

type Client struct {
	mu     sync.Mutex
	dbs    map[string]*Database
	fail   map[string]error
	Opened int
}

// NewClient returns a client whose server already holds the named
// databases.
func NewClient(names ...string) *Client {
	c := &Client{dbs: map[string]*Database{}, fail: map[string]error{}}
	for _, n := range names {
		c.dbs[n] = NewDatabase(n)
	}
	return c
}

// Fail makes every later call of method return err.
func (c *Client) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail[method] = err
}

func (c *Client) Database(_ context.Context, name string) (driver.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail["Database"]; err != nil {
		return nil, err
	}
	db, ok := c.dbs[name]
	if !ok {
		return nil, notFound("database " + name)
	}
	c.Opened++
	return db, nil
}

// Get returns the stored database for assertions, or nil.
func (c *Client) Get(name string) *Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dbs[name]
}

func (c *Client) DatabaseExists(_ context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail["DatabaseExists"]; err != nil {
		return false, err
	}
	_, ok := c.dbs[name]
	return ok, nil
}

func (c *Client) CreateDatabase(_ context.Context, name string) (driver.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail["CreateDatabase"]; err != nil {
		return nil, err
	}
	if _, ok := c.dbs[name]; ok {
		return nil, ErrDuplicate
	}
	db := NewDatabase(name)
	c.dbs[name] = db
	return db, nil
}

func (c *Client) DropDatabase(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail["DropDatabase"]; err != nil {
		return err
	}
	if _, ok := c.dbs[name]; !ok {
		return notFound("database " + name)
	}
	delete(c.dbs, name)
	return nil
}

// ------------------------------------------------------------------
// Database
// ------------------------------------------------------------------

// Call is one recorded Query.
type Call struct {
	Query    string
	BindVars map[string]any
}

type Database struct {
	name string

	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	edges       map[string]bool
	graphs      map[string]driver.GraphDefinition
	responses   [][]any
	fail        map[string]error
	seq         int

	Calls []Call
}

func NewDatabase(name string) *Database {
	return &Database{
		name:        name,
		collections: map[string]map[string]map[string]any{},
		edges:       map[string]bool{},
		graphs:      map[string]driver.GraphDefinition{},
		fail:        map[string]error{},
	}
}

// Respond queues the rows returned by the next Query call.
func (d *Database) Respond(rows ...any) *Database {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, rows)
	return d
}

// Fail makes every later call of method return err.
func (d *Database) Fail(method string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[method] = err
}

// Count returns the number of documents in collection.
func (d *Database) Count(collection string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.collections[collection])
}

// IsEdge reports whether collection was created as an edge collection.
func (d *Database) IsEdge(collection string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.edges[collection]
}

func (d *Database) Name() string { return d.name }

func (d *Database) Query(_ context.Context, query string, bindVars map[string]any) (driver.Cursor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail["Query"]; err != nil {
		return nil, err
	}
	d.Calls = append(d.Calls, Call{Query: query, BindVars: bindVars})
	var rows []any
	if len(d.responses) > 0 {
		rows, d.responses = d.responses[0], d.responses[1:]
	}
	return &cursor{rows: rows}, nil
}

func (d *Database) Collections(context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail["Collections"]; err != nil {
		return nil, err
	}
	return internal.SortedKeys(d.collections), nil
}

func (d *Database) CollectionExists(_ context.Context, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.collections[name]
	return ok, nil
}

func (d *Database) CreateCollection(_ context.Context, name string, edge bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail["CreateCollection"]; err != nil {
		return err
	}
	return d.createCollection(name, edge)
}

func (d *Database) createCollection(name string, edge bool) error {
	if _, ok := d.collections[name]; ok {
		return ErrDuplicate
	}
	d.collections[name] = map[string]map[string]any{}
	d.edges[name] = edge
	return nil
}

func (d *Database) TruncateCollection(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.collections[name]; !ok {
		return notFound("collection " + name)
	}
	d.collections[name] = map[string]map[string]any{}
	return nil
}

func (d *Database) DropCollection(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.collections[name]; !ok {
		return notFound("collection " + name)
	}
	delete(d.collections, name)
	delete(d.edges, name)
	return nil
}

func (d *Database) Graphs(context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail["Graphs"]; err != nil {
		return nil, err
	}
	return internal.SortedKeys(d.graphs), nil
}

func (d *Database) GraphExists(_ context.Context, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.graphs[name]
	return ok, nil
}

// CreateGraph also creates any missing edge and vertex collections, as the
// server does.
func (d *Database) CreateGraph(_ context.Context, def driver.GraphDefinition) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail["CreateGraph"]; err != nil {
		return err
	}
	if _, ok := d.graphs[def.Graph]; ok {
		return ErrDuplicate
	}
	for _, e := range def.Edges {
		if _, ok := d.collections[e.Collection]; !ok {
			_ = d.createCollection(e.Collection, true)
		}
		for _, v := range append(append([]string{}, e.From...), e.To...) {
			if _, ok := d.collections[v]; !ok {
				_ = d.createCollection(v, false)
			}
		}
	}
	d.graphs[def.Graph] = def
	return nil
}

func (d *Database) DropGraph(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.graphs[name]; !ok {
		return notFound("graph " + name)
	}
	delete(d.graphs, name)
	return nil
}

func (d *Database) CreateDocument(_ context.Context, collection string, doc any) (driver.DocumentMeta, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	coll, ok := d.collections[collection]
	if !ok {
		return driver.DocumentMeta{}, notFound("collection " + collection)
	}
	m, err := toMap(doc)
	if err != nil {
		return driver.DocumentMeta{}, err
	}
	key, _ := m["_key"].(string)
	if key == "" {
		d.seq++
		key = strconv.Itoa(d.seq)
	}
	if _, ok := coll[key]; ok {
		return driver.DocumentMeta{}, ErrDuplicate
	}
	meta := d.stamp(collection, key, m)
	coll[key] = m
	return meta, nil
}

func (d *Database) ReadDocument(_ context.Context, collection, key string, result any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.collections[collection][key]
	if !ok {
		return notFound("document " + collection + "/" + key)
	}
	return remarshal(doc, result)
}

func (d *Database) UpdateDocument(_ context.Context, collection, key string, patch any) (driver.DocumentMeta, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.collections[collection][key]
	if !ok {
		return driver.DocumentMeta{}, notFound("document " + collection + "/" + key)
	}
	m, err := toMap(patch)
	if err != nil {
		return driver.DocumentMeta{}, err
	}
	for k, v := range m {
		doc[k] = v
	}
	return d.stamp(collection, key, doc), nil
}

func (d *Database) RemoveDocument(_ context.Context, collection, key string) (driver.DocumentMeta, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.collections[collection][key]
	if !ok {
		return driver.DocumentMeta{}, notFound("document " + collection + "/" + key)
	}
	delete(d.collections[collection], key)
	return driver.DocumentMeta{Key: key, ID: collection + "/" + key, Rev: fmt.Sprint(doc["_rev"])}, nil
}

func (d *Database) stamp(collection, key string, doc map[string]any) driver.DocumentMeta {
	d.seq++
	meta := driver.DocumentMeta{Key: key, ID: collection + "/" + key, Rev: "_rev" + strconv.Itoa(d.seq)}
	doc["_key"], doc["_id"], doc["_rev"] = meta.Key, meta.ID, meta.Rev
	return meta
}

// ------------------------------------------------------------------
// cursor
// ------------------------------------------------------------------

type cursor struct {
	rows   []any
	closed bool
}

func (c *cursor) HasMore() bool { return !c.closed && len(c.rows) > 0 }

func (c *cursor) ReadDocument(_ context.Context, result any) error {
	if !c.HasMore() {
		return arango.NoMoreDocumentsError{}
	}
	row := c.rows[0]
	c.rows = c.rows[1:]
	return remarshal(row, result)
}

func (c *cursor) Close() error {
	c.closed = true
	return nil
}

func toMap(v any) (map[string]any, error) {
	m := map[string]any{}
	if err := remarshal(v, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
