// Package structure provisions and validates the databases, collections
// and graphs an application expects.
//
//	s := structure.DBStructure{
//	    Database:    "tour",
//	    Collections: []string{"cyclists", "teams"},
//	    Graphs: []driver.GraphDefinition{{
//	        Graph: "membership",
//	        Edges: []driver.EdgeDefinition{{Collection: "rides_for", From: []string{"cyclists"}, To: []string{"teams"}}},
//	    }},
//	}
//	res, err := structure.Create(ctx, client, s)
//
// Errors from the server are not fatal here: they are recorded on the
// EntityStatus they concern and summarized in Result.Message.
package structure

import (
	"context"
	"fmt"
	"strings"

	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/fault"
	"github.com/distributhor/arangotools/internal"
)

// DBStructure describes what a database should contain.
type DBStructure struct {
	Database        string                   `yaml:"database"`
	Collections     []string                 `yaml:"collections"`
	EdgeCollections []string                 `yaml:"edge_collections"`
	Graphs          []driver.GraphDefinition `yaml:"graphs"`
}

type Status string

const (
	StatusExists  Status = "exists"
	StatusCreated Status = "created"
	StatusMissing Status = "missing"
	StatusError   Status = "error"
)

// EntityStatus reports on one database, collection or graph.
type EntityStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of Create or Validate.
type Result struct {
	Message     string         `json:"message"`
	Database    EntityStatus   `json:"database"`
	Collections []EntityStatus `json:"collections,omitempty"`
	Graphs      []EntityStatus `json:"graphs,omitempty"`
}

// OK reports whether every entity exists.
func (r Result) OK() bool {
	if !r.Database.Exists {
		return false
	}
	for _, es := range append(append([]EntityStatus{}, r.Collections...), r.Graphs...) {
		if !es.Exists {
			return false
		}
	}
	return true
}

func (r Result) errors() []string {
	var out []string
	for _, es := range append(append([]EntityStatus{r.Database}, r.Collections...), r.Graphs...) {
		if es.Status == StatusError {
			out = append(out, es.Name)
		}
	}
	return out
}

func (r Result) missing() []string {
	var out []string
	for _, es := range append(append([]EntityStatus{r.Database}, r.Collections...), r.Graphs...) {
		if es.Status == StatusMissing {
			out = append(out, es.Name)
		}
	}
	return out
}

func (s DBStructure) validate() error {
	if s.Database == "" {
		return fault.InvalidInput("no database name specified")
	}
	return nil
}

func (s DBStructure) collectionNames() []string {
	return internal.Unique(append(append([]string{}, s.Collections...), s.EdgeCollections...))
}

// ------------------------------------------------------------------
// Create
// ------------------------------------------------------------------

// Create makes whatever part of s does not exist yet.
func Create(ctx context.Context, client driver.Client, s DBStructure) (Result, error) {
	if err := s.validate(); err != nil {
		return Result{}, err
	}

	res := Result{Database: EntityStatus{Name: s.Database}}

	exists, err := client.DatabaseExists(ctx, s.Database)
	if err != nil {
		res.Database = failed(s.Database, err)
		res.Message = "cannot check database: " + err.Error()
		return res, nil
	}

	var db driver.Database
	if exists {
		db, err = client.Database(ctx, s.Database)
		res.Database.Status = StatusExists
	} else {
		db, err = client.CreateDatabase(ctx, s.Database)
		res.Database.Status = StatusCreated
	}
	if err != nil {
		res.Database = failed(s.Database, err)
		res.Message = "cannot open database: " + err.Error()
		return res, nil
	}
	res.Database.Exists = true

	existing, listErr := db.Collections(ctx)
	for _, name := range s.collectionNames() {
		es := EntityStatus{Name: name}
		switch {
		case listErr != nil:
			es = failed(name, listErr)
		case internal.Contains(existing, name):
			es.Exists, es.Status = true, StatusExists
		default:
			if err := db.CreateCollection(ctx, name, internal.Contains(s.EdgeCollections, name)); err != nil {
				es = failed(name, err)
			} else {
				es.Exists, es.Status = true, StatusCreated
			}
		}
		res.Collections = append(res.Collections, es)
	}

	graphs, listErr := db.Graphs(ctx)
	for _, g := range s.Graphs {
		es := EntityStatus{Name: g.Graph}
		switch {
		case listErr != nil:
			es = failed(g.Graph, listErr)
		case internal.Contains(graphs, g.Graph):
			es.Exists, es.Status = true, StatusExists
		default:
			if err := db.CreateGraph(ctx, g); err != nil {
				es = failed(g.Graph, err)
			} else {
				es.Exists, es.Status = true, StatusCreated
			}
		}
		res.Graphs = append(res.Graphs, es)
	}

	if errs := res.errors(); len(errs) > 0 {
		res.Message = fmt.Sprintf("database structure created with errors: %s", strings.Join(errs, ", "))
	} else {
		res.Message = "database structure created"
	}
	return res, nil
}

// ------------------------------------------------------------------
// Validate
// ------------------------------------------------------------------

// Validate reports which parts of s exist, without changing anything.
func Validate(ctx context.Context, client driver.Client, s DBStructure) (Result, error) {
	if err := s.validate(); err != nil {
		return Result{}, err
	}

	res := Result{Database: EntityStatus{Name: s.Database}}

	exists, err := client.DatabaseExists(ctx, s.Database)
	if err != nil {
		res.Database = failed(s.Database, err)
		res.Message = "cannot check database: " + err.Error()
		return res, nil
	}
	if !exists {
		res.Database.Status = StatusMissing
		res.Collections = internal.Map(s.collectionNames(), missing)
		res.Graphs = internal.Map(s.Graphs, func(g driver.GraphDefinition) EntityStatus { return missing(g.Graph) })
		res.Message = "database " + s.Database + " does not exist"
		return res, nil
	}
	res.Database.Exists, res.Database.Status = true, StatusExists

	db, err := client.Database(ctx, s.Database)
	if err != nil {
		res.Database = failed(s.Database, err)
		res.Message = "cannot open database: " + err.Error()
		return res, nil
	}

	res.Collections = check(s.collectionNames(), func() ([]string, error) { return db.Collections(ctx) })
	res.Graphs = check(internal.Map(s.Graphs, func(g driver.GraphDefinition) string { return g.Graph }),
		func() ([]string, error) { return db.Graphs(ctx) })

	switch {
	case len(res.errors()) > 0:
		res.Message = "database structure could not be fully validated: " + strings.Join(res.errors(), ", ")
	case len(res.missing()) > 0:
		res.Message = "database structure is missing: " + strings.Join(res.missing(), ", ")
	default:
		res.Message = "database structure is valid"
	}
	return res, nil
}

// check compares required names against what list returns.
func check(required []string, list func() ([]string, error)) []EntityStatus {
	if len(required) == 0 {
		return nil
	}
	existing, err := list()
	if err != nil {
		return internal.Map(required, func(n string) EntityStatus { return failed(n, err) })
	}
	absent := internal.Difference(required, existing)
	return internal.Map(required, func(n string) EntityStatus {
		if internal.Contains(absent, n) {
			return missing(n)
		}
		return EntityStatus{Name: n, Exists: true, Status: StatusExists}
	})
}

func missing(name string) EntityStatus {
	return EntityStatus{Name: name, Status: StatusMissing}
}

func failed(name string, err error) EntityStatus {
	return EntityStatus{Name: name, Status: StatusError, Error: fault.Upstream(name, err).Error()}
}
