// Package query assembles parameterized AQL queries from structured filter,
// search and property descriptors.
//
//	import q "github.com/distributhor/arangotools/query"
//
//	aql, err := q.FilterCriteriaLookup("cyclists", q.ListOfFilters{
//	    Filters: []string{`d.name == "Lance"`, `d.name == "Chris"`},
//	    Match:   q.MatchAny,
//	}, q.Options{})
//	// aql.Query: FOR d IN @@collection FILTER ( d.name == "Lance" || d.name == "Chris" ) RETURN d
//
// Literal values and property names taken from NamedValue inputs are always
// bound as bind parameters. Filter strings (RawFilter, ListOfFilters) are
// caller-authored AQL fragments and are spliced into the query text.
package query

// -------------------------------------------------------------------
// MatchType: how several clauses are combined
// -------------------------------------------------------------------

type MatchType uint8

const (
	MatchAny MatchType = iota // ||
	MatchAll                  // &&
)

// Operator returns the AQL logical operator for m.
func (m MatchType) Operator() string {
	if m == MatchAll {
		return "&&"
	}
	return "||"
}

func (m MatchType) String() string {
	if m == MatchAll {
		return "ALL"
	}
	return "ANY"
}

// -------------------------------------------------------------------
// Equality constraints
// -------------------------------------------------------------------

// NamedValue is a property-equality constraint. Name is a dot path into the
// document, e.g. "address.city".
type NamedValue struct {
	Name  string
	Value any
}

// CompositeKey is an AND-group of equality constraints.
type CompositeKey []NamedValue

// UniqueValue is a single equality constraint used as one branch of a
// uniqueness check.
type UniqueValue struct {
	NamedValue
}

// Constraint is one OR-branch of a UniqueConstraint: either a UniqueValue or
// a CompositeKey.
type Constraint interface {
	constraint()
}

func (UniqueValue) constraint()  {}
func (CompositeKey) constraint() {}

// UniqueConstraint checks whether any document in Collection matches one of
// Constraints. ExcludeDocumentKey, when set, leaves that document out, which
// is what an update of the same document needs.
type UniqueConstraint struct {
	Collection         string
	Constraints        []Constraint
	ExcludeDocumentKey string
}

// -------------------------------------------------------------------
// Filters
// -------------------------------------------------------------------

// Filter is the input of FilterCriteriaLookup. The variants are RawFilter,
// ListOfFilters and Expression.
type Filter interface {
	filter()
}

// RawFilter is a free-form boolean expression such as
// `age > 5 && LIKE(name, "%a%", true)`. Bare property names are qualified
// with the iteration variable by Compose.
type RawFilter string

// ListOfFilters is a list of clauses joined by Match.
type ListOfFilters struct {
	Filters []string
	Match   MatchType
}

// Expression is a pre-built AQL fragment. Its text is used as-is and its
// bind vars are merged into the enclosing query.
type Expression AQL

func (RawFilter) filter()     {}
func (ListOfFilters) filter() {}
func (Expression) filter()    {}

// -------------------------------------------------------------------
// Search
// -------------------------------------------------------------------

// SearchTerms matches documents whose Properties contain Terms as
// substrings (case-insensitive). With MatchAll every term must be found in
// at least one property, with MatchAny a single hit is enough.
type SearchTerms struct {
	Properties []string
	Terms      []string
	Match      MatchType
}

// Criteria combines a search and a filter with Match.
type Criteria struct {
	Search *SearchTerms
	Filter Filter
	Match  MatchType
}

// -------------------------------------------------------------------
// Output
// -------------------------------------------------------------------

// AQL is a query text plus the values of its bind parameters.
type AQL struct {
	Query    string         `json:"query"`
	BindVars map[string]any `json:"bindVars"`
}
