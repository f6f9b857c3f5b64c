// driver/arangodb.go
//
// Shim over github.com/arangodb/go-driver that satisfies Client and
// Database and wraps queries in OpenTelemetry spans.
//
// Usage:
//
//	client, err := driver.NewArangoClient(driver.ArangoConfig{
//	    Endpoints: []string{"http://localhost:8529"},
//	    Username:  "root",
//	})
//	db, err := client.Database(ctx, "tour")
//	cur, err := db.Query(ctx, "FOR d IN @@c RETURN d", map[string]any{"@c": "cyclists"})
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	arango "github.com/arangodb/go-driver"
	arangohttp "github.com/arangodb/go-driver/http"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/distributhor/arangotools/internal"
)

const tracerName = "arangotools.driver"

type ArangoConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

// ArangoClient implements Client on top of arango.Client.
type ArangoClient struct {
	client arango.Client
}

// NewArangoClient opens an HTTP connection to the configured endpoints. No
// request is made until the first call.
func NewArangoClient(cfg ArangoConfig) (*ArangoClient, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("driver: no endpoints configured")
	}
	conn, err := arangohttp.NewConnection(arangohttp.ConnectionConfig{Endpoints: cfg.Endpoints})
	if err != nil {
		return nil, fmt.Errorf("driver: cannot create connection: %w", err)
	}
	opts := arango.ClientConfig{Connection: conn}
	if cfg.Username != "" {
		opts.Authentication = arango.BasicAuthentication(cfg.Username, cfg.Password)
	}
	c, err := arango.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("driver: cannot create client: %w", err)
	}
	return &ArangoClient{client: c}, nil
}

// WrapClient adapts an already configured arango.Client.
func WrapClient(c arango.Client) *ArangoClient { return &ArangoClient{client: c} }

func (ac *ArangoClient) Database(ctx context.Context, name string) (Database, error) {
	db, err := ac.client.Database(ctx, name)
	if err != nil {
		return nil, err
	}
	return &ArangoDatabase{db: db}, nil
}

func (ac *ArangoClient) DatabaseExists(ctx context.Context, name string) (bool, error) {
	return ac.client.DatabaseExists(ctx, name)
}

func (ac *ArangoClient) CreateDatabase(ctx context.Context, name string) (Database, error) {
	db, err := ac.client.CreateDatabase(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	return &ArangoDatabase{db: db}, nil
}

func (ac *ArangoClient) DropDatabase(ctx context.Context, name string) error {
	db, err := ac.client.Database(ctx, name)
	if err != nil {
		return err
	}
	return db.Remove(ctx)
}

// ArangoDatabase implements Database on top of arango.Database.
type ArangoDatabase struct {
	db arango.Database
}

func (ad *ArangoDatabase) Name() string { return ad.db.Name() }

// Query satisfies Executor.
func (ad *ArangoDatabase) Query(ctx context.Context, query string, bindVars map[string]any) (Cursor, error) {
	// span for tracing & slow-query logging
	ctx, span := otel.Tracer(tracerName).Start(ctx, "arangodb.query")
	defer span.End()

	start := time.Now()
	cur, err := ad.db.Query(ctx, query, bindVars)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("db.name", ad.db.Name()),
		attribute.String("aql.query", query),
		attribute.StringSlice("aql.bind_vars", internal.SortedKeys(bindVars)),
		attribute.Float64("aql.duration_ms", float64(elapsed.Milliseconds())),
	)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return &arangoCursor{cur: cur}, nil
}

func (ad *ArangoDatabase) Collections(ctx context.Context) ([]string, error) {
	cols, err := ad.db.Collections(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		if !strings.HasPrefix(c.Name(), "_") {
			names = append(names, c.Name())
		}
	}
	return names, nil
}

func (ad *ArangoDatabase) CollectionExists(ctx context.Context, name string) (bool, error) {
	return ad.db.CollectionExists(ctx, name)
}

func (ad *ArangoDatabase) CreateCollection(ctx context.Context, name string, edge bool) error {
	opts := &arango.CreateCollectionOptions{}
	if edge {
		opts.Type = arango.CollectionTypeEdge
	}
	_, err := ad.db.CreateCollection(ctx, name, opts)
	return err
}

func (ad *ArangoDatabase) TruncateCollection(ctx context.Context, name string) error {
	col, err := ad.db.Collection(ctx, name)
	if err != nil {
		return err
	}
	return col.Truncate(ctx)
}

func (ad *ArangoDatabase) DropCollection(ctx context.Context, name string) error {
	col, err := ad.db.Collection(ctx, name)
	if err != nil {
		return err
	}
	return col.Remove(ctx)
}

func (ad *ArangoDatabase) Graphs(ctx context.Context) ([]string, error) {
	graphs, err := ad.db.Graphs(ctx)
	if err != nil {
		return nil, err
	}
	return internal.Map(graphs, func(g arango.Graph) string { return g.Name() }), nil
}

func (ad *ArangoDatabase) GraphExists(ctx context.Context, name string) (bool, error) {
	return ad.db.GraphExists(ctx, name)
}

func (ad *ArangoDatabase) CreateGraph(ctx context.Context, def GraphDefinition) error {
	edges := internal.Map(def.Edges, func(e EdgeDefinition) arango.EdgeDefinition {
		return arango.EdgeDefinition{Collection: e.Collection, From: e.From, To: e.To}
	})
	_, err := ad.db.CreateGraphV2(ctx, def.Graph, &arango.CreateGraphOptions{EdgeDefinitions: edges})
	return err
}

func (ad *ArangoDatabase) DropGraph(ctx context.Context, name string) error {
	g, err := ad.db.Graph(ctx, name)
	if err != nil {
		return err
	}
	return g.Remove(ctx)
}

func (ad *ArangoDatabase) CreateDocument(ctx context.Context, collection string, doc any) (DocumentMeta, error) {
	ctx, span := ad.span(ctx, "arangodb.create", collection)
	defer span.End()

	col, err := ad.db.Collection(ctx, collection)
	if err != nil {
		recordError(span, err)
		return DocumentMeta{}, err
	}
	meta, err := col.CreateDocument(ctx, doc)
	if err != nil {
		recordError(span, err)
	}
	return toMeta(meta), err
}

func (ad *ArangoDatabase) ReadDocument(ctx context.Context, collection, key string, result any) error {
	ctx, span := ad.span(ctx, "arangodb.read", collection)
	defer span.End()

	col, err := ad.db.Collection(ctx, collection)
	if err != nil {
		recordError(span, err)
		return err
	}
	if _, err := col.ReadDocument(ctx, key, result); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (ad *ArangoDatabase) UpdateDocument(ctx context.Context, collection, key string, patch any) (DocumentMeta, error) {
	ctx, span := ad.span(ctx, "arangodb.update", collection)
	defer span.End()

	col, err := ad.db.Collection(ctx, collection)
	if err != nil {
		recordError(span, err)
		return DocumentMeta{}, err
	}
	meta, err := col.UpdateDocument(ctx, key, patch)
	if err != nil {
		recordError(span, err)
	}
	return toMeta(meta), err
}

func (ad *ArangoDatabase) RemoveDocument(ctx context.Context, collection, key string) (DocumentMeta, error) {
	ctx, span := ad.span(ctx, "arangodb.remove", collection)
	defer span.End()

	col, err := ad.db.Collection(ctx, collection)
	if err != nil {
		recordError(span, err)
		return DocumentMeta{}, err
	}
	meta, err := col.RemoveDocument(ctx, key)
	if err != nil {
		recordError(span, err)
	}
	return toMeta(meta), err
}

// IsNotFound reports whether err is the server's "not found" response.
func IsNotFound(err error) bool { return arango.IsNotFoundGeneral(err) }

// ----------------------------------------------------------------------------
// cursor
// ----------------------------------------------------------------------------

type arangoCursor struct {
	cur arango.Cursor
}

func (c *arangoCursor) HasMore() bool { return c.cur.HasMore() }

func (c *arangoCursor) ReadDocument(ctx context.Context, result any) error {
	_, err := c.cur.ReadDocument(ctx, result)
	return err
}

func (c *arangoCursor) Close() error { return c.cur.Close() }

// ----------------------------------------------------------------------------
// internal helpers
// ----------------------------------------------------------------------------

func (ad *ArangoDatabase) span(ctx context.Context, name, collection string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	span.SetAttributes(
		attribute.String("db.name", ad.db.Name()),
		attribute.String("db.collection", collection),
	)
	return ctx, span
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toMeta(m arango.DocumentMeta) DocumentMeta {
	return DocumentMeta{Key: m.Key, ID: string(m.ID), Rev: m.Rev}
}
