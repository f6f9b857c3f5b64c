// Package scan materializes query cursors into documents, trims them, and
// decodes them into Go values.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/distributhor/arangotools/driver"
)

// Document is a decoded JSON document.
type Document map[string]any

// Key returns the document's _key, or "" when absent.
func (d Document) Key() string {
	k, _ := d["_key"].(string)
	return k
}

// Trim describes which fields to drop from returned documents. Keep wins
// over Omit when both are set.
type Trim struct {
	// Private strips every field starting with "_" except _key.
	Private bool
	Keep    []string
	Omit    []string
}

func (t Trim) empty() bool {
	return !t.Private && len(t.Keep) == 0 && len(t.Omit) == 0
}

// Apply returns a trimmed copy of doc. The input is not modified.
func (t Trim) Apply(doc Document) Document {
	if doc == nil || t.empty() {
		return doc
	}

	out := make(Document, len(doc))
	if len(t.Keep) > 0 {
		for _, k := range t.Keep {
			if v, ok := doc[k]; ok {
				out[k] = v
			}
		}
	} else {
		for k, v := range doc {
			out[k] = v
		}
		for _, k := range t.Omit {
			delete(out, k)
		}
	}

	if t.Private {
		for k := range out {
			if strings.HasPrefix(k, "_") && k != "_key" {
				delete(out, k)
			}
		}
	}
	return out
}

// ReadAll drains cur and closes it.
func ReadAll(ctx context.Context, cur driver.Cursor, trim Trim) ([]Document, error) {
	defer cur.Close()

	var out []Document
	for cur.HasMore() {
		var doc Document
		if err := cur.ReadDocument(ctx, &doc); err != nil {
			return nil, err
		}
		out = append(out, trim.Apply(doc))
	}
	return out, nil
}

// ReadOne returns the first row of cur, or nil when it is empty. The cursor
// is closed either way.
func ReadOne(ctx context.Context, cur driver.Cursor, trim Trim) (Document, error) {
	defer cur.Close()

	if !cur.HasMore() {
		return nil, nil
	}
	var doc Document
	if err := cur.ReadDocument(ctx, &doc); err != nil {
		return nil, err
	}
	return trim.Apply(doc), nil
}

// ReadValues drains a cursor whose rows are scalars, e.g. RETURN d._key.
func ReadValues[T any](ctx context.Context, cur driver.Cursor) ([]T, error) {
	defer cur.Close()

	var out []T
	for cur.HasMore() {
		var v T
		if err := cur.ReadDocument(ctx, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Decode converts doc into T, which is typically a struct with json tags.
func Decode[T any](doc Document) (T, error) {
	var out T
	b, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("scan: cannot encode document: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("scan: cannot decode document into %T: %w", out, err)
	}
	return out, nil
}

// DecodeSlice converts every document into T.
func DecodeSlice[T any](docs []Document) ([]T, error) {
	out := make([]T, len(docs))
	for i, d := range docs {
		v, err := Decode[T](d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
