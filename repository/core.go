package repository

import (
	"context"
	"fmt"

	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/fault"
	"github.com/distributhor/arangotools/query"
	"github.com/distributhor/arangotools/scan"
)

/*───────────────────────────────────────────────────────────────
|  Single documents                                              |
└───────────────────────────────────────────────────────────────*/

// Create inserts doc, a struct or map, into collection.
func (r *DB) Create(ctx context.Context, collection string, doc any) (driver.DocumentMeta, error) {
	if collection == "" {
		return driver.DocumentMeta{}, fault.InvalidInput("no collection specified")
	}
	return r.db.CreateDocument(ctx, collection, doc)
}

// Read returns the document stored under key. A missing document is a
// fault.NotFoundCode error.
func (r *DB) Read(ctx context.Context, collection, key string, opts ...Opt) (scan.Document, error) {
	if collection == "" || key == "" {
		return nil, fault.InvalidInput("collection and key are required")
	}
	var doc scan.Document
	if err := r.db.ReadDocument(ctx, collection, key, &doc); err != nil {
		if driver.IsNotFound(err) {
			return nil, fault.New(fault.NotFoundCode, fmt.Sprintf("document %s/%s not found", collection, key)).
				WithMetadata(map[string]string{"collection": collection, "key": key}).
				WithOriginal(err)
		}
		return nil, err
	}
	return collect(query.MatchAny, opts).trim.Apply(doc), nil
}

// Update merges patch into the document stored under key.
func (r *DB) Update(ctx context.Context, collection, key string, patch any) (driver.DocumentMeta, error) {
	if collection == "" || key == "" {
		return driver.DocumentMeta{}, fault.InvalidInput("collection and key are required")
	}
	return r.db.UpdateDocument(ctx, collection, key, patch)
}

// Delete removes the document stored under key.
func (r *DB) Delete(ctx context.Context, collection, key string) (driver.DocumentMeta, error) {
	if collection == "" || key == "" {
		return driver.DocumentMeta{}, fault.InvalidInput("collection and key are required")
	}
	return r.db.RemoveDocument(ctx, collection, key)
}

/*───────────────────────────────────────────────────────────────
|  Bulk mutations                                                |
└───────────────────────────────────────────────────────────────*/

// UpdateDocumentsByKeyValue merges data into every document whose property
// equals key and returns the updated keys.
func (r *DB) UpdateDocumentsByKeyValue(ctx context.Context, collection string, key query.NamedValue, data any) ([]string, error) {
	aql, err := query.UpdateByKeyValue(collection, key, data)
	if err != nil {
		return nil, err
	}
	return r.keys(ctx, aql)
}

// DeleteDocumentsByKeyValue removes every document whose property equals
// key and returns the removed keys.
func (r *DB) DeleteDocumentsByKeyValue(ctx context.Context, collection string, key query.NamedValue) ([]string, error) {
	aql, err := query.DeleteByKeyValue(collection, key)
	if err != nil {
		return nil, err
	}
	return r.keys(ctx, aql)
}

func (r *DB) keys(ctx context.Context, aql query.AQL) ([]string, error) {
	cur, err := r.exec(ctx, aql)
	if err != nil {
		return nil, err
	}
	return scan.ReadValues[string](ctx, cur)
}

/*───────────────────────────────────────────────────────────────
|  Lookups                                                       |
└───────────────────────────────────────────────────────────────*/

// FetchOneByPropertyValue returns the first document whose property equals
// nv.Value, or nil.
func (r *DB) FetchOneByPropertyValue(ctx context.Context, collection string, nv query.NamedValue, opts ...Opt) (scan.Document, error) {
	fo := collect(query.MatchAny, opts)
	fo.query.Limit = &query.Limit{Count: 1}
	aql, err := query.EqualityLookup(collection, []query.NamedValue{nv}, fo.query)
	if err != nil {
		return nil, err
	}
	return r.returnOne(ctx, aql, fo)
}

// FetchAllByPropertyValue returns every document whose property equals
// nv.Value.
func (r *DB) FetchAllByPropertyValue(ctx context.Context, collection string, nv query.NamedValue, opts ...Opt) ([]scan.Document, error) {
	fo := collect(query.MatchAny, opts)
	aql, err := query.EqualityLookup(collection, []query.NamedValue{nv}, fo.query)
	if err != nil {
		return nil, err
	}
	return r.returnAll(ctx, aql, fo)
}

// FetchOneByCompositeValue returns the first document matching key. All
// values must match unless Match(query.MatchAny) is given.
func (r *DB) FetchOneByCompositeValue(ctx context.Context, collection string, key query.CompositeKey, opts ...Opt) (scan.Document, error) {
	fo := collect(query.MatchAll, opts)
	fo.query.Limit = &query.Limit{Count: 1}
	aql, err := query.EqualityLookup(collection, key, fo.query)
	if err != nil {
		return nil, err
	}
	return r.returnOne(ctx, aql, fo)
}

// FetchAllByCompositeValue returns every document matching key. All values
// must match unless Match(query.MatchAny) is given.
func (r *DB) FetchAllByCompositeValue(ctx context.Context, collection string, key query.CompositeKey, opts ...Opt) ([]scan.Document, error) {
	fo := collect(query.MatchAll, opts)
	aql, err := query.EqualityLookup(collection, key, fo.query)
	if err != nil {
		return nil, err
	}
	return r.returnAll(ctx, aql, fo)
}

// FindByFilterCriteria returns the documents matching f. Match has no
// effect here: a ListOfFilters carries its own.
func (r *DB) FindByFilterCriteria(ctx context.Context, collection string, f query.Filter, opts ...Opt) ([]scan.Document, error) {
	fo := collect(query.MatchAny, opts)
	aql, err := query.FilterCriteriaLookup(collection, f, fo.query)
	if err != nil {
		return nil, err
	}
	return r.returnAll(ctx, aql, fo)
}

// FetchByCriteria returns the documents matching a search and/or filter.
func (r *DB) FetchByCriteria(ctx context.Context, collection string, c query.Criteria, opts ...Opt) ([]scan.Document, error) {
	fo := collect(query.MatchAny, opts)
	aql, err := query.CriteriaLookup(collection, c, fo.query)
	if err != nil {
		return nil, err
	}
	return r.returnAll(ctx, aql, fo)
}

/*───────────────────────────────────────────────────────────────
|  Uniqueness                                                    |
└───────────────────────────────────────────────────────────────*/

type UniqueConstraintResult struct {
	Violated     bool     `json:"violated"`
	DocumentKeys []string `json:"documentKeys,omitempty"`
}

// UniqueConstraintValidation reports which documents, other than
// uc.ExcludeDocumentKey, already hold a constrained value.
func (r *DB) UniqueConstraintValidation(ctx context.Context, uc query.UniqueConstraint) (UniqueConstraintResult, error) {
	aql, err := query.UniqueConstraintQuery(uc)
	if err != nil {
		return UniqueConstraintResult{}, err
	}
	keys, err := r.keys(ctx, aql)
	if err != nil {
		return UniqueConstraintResult{}, err
	}
	return UniqueConstraintResult{Violated: len(keys) > 0, DocumentKeys: keys}, nil
}

/*───────────────────────────────────────────────────────────────
|  Administrative helpers                                        |
└───────────────────────────────────────────────────────────────*/

func (r *DB) CollectionExists(ctx context.Context, name string) (bool, error) {
	return r.db.CollectionExists(ctx, name)
}

func (r *DB) GraphExists(ctx context.Context, name string) (bool, error) {
	return r.db.GraphExists(ctx, name)
}

type ClearMethod int

const (
	// Truncate empties every collection and keeps the structure.
	Truncate ClearMethod = iota
	// Drop removes every graph, then every collection.
	Drop
)

// ClearDB empties or dismantles the database. It stops at the first error.
func (r *DB) ClearDB(ctx context.Context, method ClearMethod) error {
	if method == Drop {
		graphs, err := r.db.Graphs(ctx)
		if err != nil {
			return err
		}
		for _, g := range graphs {
			if err := r.db.DropGraph(ctx, g); err != nil {
				return err
			}
		}
	}

	collections, err := r.db.Collections(ctx)
	if err != nil {
		return err
	}
	for _, c := range collections {
		if method == Drop {
			err = r.db.DropCollection(ctx, c)
		} else {
			err = r.db.TruncateCollection(ctx, c)
		}
		if err != nil {
			return err
		}
		r.logger.InfoContext(ctx, "collection cleared", "collection", c, "drop", method == Drop)
	}
	return nil
}
