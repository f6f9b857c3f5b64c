// Package driver defines the slice of the database client arangotools
// depends on, and an implementation of it over
// github.com/arangodb/go-driver.
//
// Everything above this package talks to Executor, Database and Client
// only, so tests substitute in-memory fakes.
package driver

import "context"

// Executor runs a parameterized AQL query.
type Executor interface {
	Query(ctx context.Context, query string, bindVars map[string]any) (Cursor, error)
}

// Cursor is a lazy sequence of result rows.
type Cursor interface {
	HasMore() bool
	// ReadDocument decodes the next row into result.
	ReadDocument(ctx context.Context, result any) error
	Close() error
}

// DocumentMeta identifies a stored document.
type DocumentMeta struct {
	Key string `json:"_key"`
	ID  string `json:"_id"`
	Rev string `json:"_rev"`
}

// EdgeDefinition declares an edge collection of a graph and the vertex
// collections it connects.
type EdgeDefinition struct {
	Collection string   `yaml:"collection" json:"collection"`
	From       []string `yaml:"from" json:"from"`
	To         []string `yaml:"to" json:"to"`
}

// GraphDefinition is a named graph and its edge definitions.
type GraphDefinition struct {
	Graph string           `yaml:"graph" json:"graph"`
	Edges []EdgeDefinition `yaml:"edges" json:"edges"`
}

// Database is one database on the server.
type Database interface {
	Executor

	Name() string

	// Collections lists the non-system collections.
	Collections(ctx context.Context) ([]string, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name string, edge bool) error
	TruncateCollection(ctx context.Context, name string) error
	DropCollection(ctx context.Context, name string) error

	Graphs(ctx context.Context) ([]string, error)
	GraphExists(ctx context.Context, name string) (bool, error)
	CreateGraph(ctx context.Context, def GraphDefinition) error
	DropGraph(ctx context.Context, name string) error

	CreateDocument(ctx context.Context, collection string, doc any) (DocumentMeta, error)
	ReadDocument(ctx context.Context, collection, key string, result any) error
	UpdateDocument(ctx context.Context, collection, key string, patch any) (DocumentMeta, error)
	RemoveDocument(ctx context.Context, collection, key string) (DocumentMeta, error)
}

// Client manages databases on one server (or cluster).
type Client interface {
	Database(ctx context.Context, name string) (Database, error)
	DatabaseExists(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) (Database, error)
	DropDatabase(ctx context.Context, name string) error
}
