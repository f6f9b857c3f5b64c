package query

import (
	"strconv"
	"strings"

	"github.com/distributhor/arangotools/fault"
	"github.com/distributhor/arangotools/internal"
)

// -------------------------------------------------------------------
// statement: FOR … FILTER … RETURN assembly
// -------------------------------------------------------------------

type statement struct {
	parts []string
	vars  bindVars
}

func newStatement(collection string) (*statement, error) {
	if collection == "" {
		return nil, fault.InvalidInput("no collection specified")
	}
	return &statement{
		parts: []string{"FOR d IN @@collection"},
		vars:  newBindVars(collection),
	}, nil
}

func (s *statement) add(parts ...string) *statement {
	for _, p := range parts {
		if p != "" {
			s.parts = append(s.parts, p)
		}
	}
	return s
}

func (s *statement) filter(expr string) *statement {
	if expr == "" {
		return s
	}
	return s.add("FILTER " + expr)
}

func (s *statement) window(o Options) *statement {
	return s.add(o.Sort.clause(), o.Limit.clause())
}

func (s *statement) build() AQL {
	sb := internal.GetBuilder()
	defer internal.PutBuilder(sb)
	for i, p := range s.parts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p)
	}
	return AQL{Query: sb.String(), BindVars: map[string]any(s.vars)}
}

// -------------------------------------------------------------------
// Equality lookups
// -------------------------------------------------------------------

// EqualityLookup returns the documents whose properties equal the given
// values. A single value is rendered as
//
//	FILTER d.@property == @value
//
// several values as d.@<name>_key_N == @<name>_val_N clauses joined with the
// operator of opts.Match, N being the 1-based position of the value.
func EqualityLookup(collection string, values []NamedValue, opts Options) (AQL, error) {
	if len(values) == 0 {
		return AQL{}, fault.InvalidInput("no property values specified")
	}
	st, err := newStatement(collection)
	if err != nil {
		return AQL{}, err
	}

	var expr string
	if len(values) == 1 {
		expr = st.vars.equality("property", "value", values[0])
	} else {
		clauses := make([]string, len(values))
		for i, nv := range values {
			n := strconv.Itoa(i + 1)
			clauses[i] = st.vars.equality(paramName(nv.Name, "key", n), paramName(nv.Name, "val", n), nv)
		}
		expr = joinClauses(clauses, opts.Match.Operator())
	}

	return st.filter(expr).window(opts).add("RETURN d").build(), nil
}

// -------------------------------------------------------------------
// Filter criteria
// -------------------------------------------------------------------

// FilterCriteriaLookup returns the documents matching f. A nil filter, or a
// blank RawFilter, matches every document.
func FilterCriteriaLookup(collection string, f Filter, opts Options) (AQL, error) {
	st, err := newStatement(collection)
	if err != nil {
		return AQL{}, err
	}
	expr, err := filterExpression(f, st.vars)
	if err != nil {
		return AQL{}, err
	}
	return st.filter(expr).window(opts).add("RETURN d").build(), nil
}

// filterExpression renders f as a parenthesized group, or "" when f does
// not constrain anything.
func filterExpression(f Filter, vars bindVars) (string, error) {
	switch v := f.(type) {
	case nil:
		return "", nil

	case RawFilter:
		if strings.TrimSpace(string(v)) == "" {
			return "", nil
		}
		return group(Compose(string(v))), nil

	case ListOfFilters:
		clauses := internal.Filter(internal.Map(v.Filters, PrefixClause), func(c string) bool { return c != "" })
		if len(clauses) == 0 {
			return "", fault.InvalidInput("no filters specified")
		}
		return group(joinClauses(clauses, v.Match.Operator())), nil

	case *ListOfFilters:
		if v == nil {
			return "", nil
		}
		return filterExpression(*v, vars)

	case Expression:
		if strings.TrimSpace(v.Query) == "" {
			return "", nil
		}
		if err := vars.merge(v.BindVars); err != nil {
			return "", err
		}
		return group(v.Query), nil

	default:
		return "", fault.InvalidInput("unsupported filter type")
	}
}

func group(expr string) string { return "( " + expr + " )" }

// -------------------------------------------------------------------
// Search criteria
// -------------------------------------------------------------------

// CriteriaLookup returns the documents matching a substring search, a
// filter, or both combined with c.Match.
func CriteriaLookup(collection string, c Criteria, opts Options) (AQL, error) {
	st, err := newStatement(collection)
	if err != nil {
		return AQL{}, err
	}

	var groups []string
	if c.Search != nil {
		expr, err := searchExpression(*c.Search, st.vars)
		if err != nil {
			return AQL{}, err
		}
		groups = append(groups, expr)
	}
	filterExpr, err := filterExpression(c.Filter, st.vars)
	if err != nil {
		return AQL{}, err
	}
	if filterExpr != "" {
		groups = append(groups, filterExpr)
	}
	if len(groups) == 0 {
		return AQL{}, fault.InvalidInput("no search or filter criteria specified")
	}

	return st.filter(joinClauses(groups, c.Match.Operator())).window(opts).add("RETURN d").build(), nil
}

// searchExpression renders LIKE(d.@search_prop_N, @search_term_M, true)
// predicates. Terms are wrapped in % after escaping LIKE wildcards.
func searchExpression(s SearchTerms, vars bindVars) (string, error) {
	props := internal.Filter(s.Properties, func(p string) bool { return strings.TrimSpace(p) != "" })
	terms := internal.Filter(s.Terms, func(t string) bool { return strings.TrimSpace(t) != "" })
	if len(props) == 0 || len(terms) == 0 {
		return "", fault.InvalidInput("search requires at least one property and one term")
	}

	propRefs := make([]string, len(props))
	for i, p := range props {
		propRefs[i] = vars.attribute("search_prop_"+strconv.Itoa(i+1), strings.TrimSpace(p))
	}

	perTerm := make([]string, len(terms))
	var all []string
	for j, t := range terms {
		termRef := vars.value("search_term_"+strconv.Itoa(j+1), "%"+escapeLike(strings.TrimSpace(t))+"%")
		likes := make([]string, len(propRefs))
		for i, ref := range propRefs {
			likes[i] = "LIKE(" + ref + ", " + termRef + ", true)"
		}
		all = append(all, likes...)
		if len(likes) == 1 {
			perTerm[j] = likes[0]
		} else {
			perTerm[j] = group(joinClauses(likes, "||"))
		}
	}

	if s.Match == MatchAll {
		return group(joinClauses(perTerm, "&&")), nil
	}
	return group(joinClauses(all, "||")), nil
}

// escapeLike escapes the LIKE metacharacters so terms match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// -------------------------------------------------------------------
// Mutations
// -------------------------------------------------------------------

// UpdateByKeyValue merges data into every document whose property equals
// key and returns the keys of the updated documents.
func UpdateByKeyValue(collection string, key NamedValue, data any) (AQL, error) {
	st, err := newStatement(collection)
	if err != nil {
		return AQL{}, err
	}
	return st.filter(st.vars.equality("property", "value", key)).
		add("UPDATE d WITH "+st.vars.value("data", data)+" IN @@collection", "RETURN NEW._key").
		build(), nil
}

// DeleteByKeyValue removes every document whose property equals key and
// returns the keys of the removed documents.
func DeleteByKeyValue(collection string, key NamedValue) (AQL, error) {
	st, err := newStatement(collection)
	if err != nil {
		return AQL{}, err
	}
	return st.filter(st.vars.equality("property", "value", key)).
		add("REMOVE d IN @@collection", "RETURN OLD._key").
		build(), nil
}

// -------------------------------------------------------------------
// Uniqueness
// -------------------------------------------------------------------

// UniqueConstraintQuery returns the keys of documents that already hold any
// of the constrained values:
//
//	FOR d IN @@collection FILTER d._key != @excludeDocumentKey FILTER ( d.@k1 == @v1 && d.@k2 == @v2 ) || d.@k3 == @v3 RETURN d._key
func UniqueConstraintQuery(uc UniqueConstraint) (AQL, error) {
	if len(uc.Constraints) == 0 {
		return AQL{}, fault.InvalidInput("no constraints specified")
	}
	st, err := newStatement(uc.Collection)
	if err != nil {
		return AQL{}, err
	}

	n := 0
	next := func(nv NamedValue) string {
		n++
		return st.vars.equality("k"+strconv.Itoa(n), "v"+strconv.Itoa(n), nv)
	}

	branches := make([]string, 0, len(uc.Constraints))
	for _, c := range uc.Constraints {
		switch v := c.(type) {
		case UniqueValue:
			branches = append(branches, next(v.NamedValue))
		case CompositeKey:
			if len(v) == 0 {
				return AQL{}, fault.InvalidInput("composite key has no values")
			}
			members := internal.Map(v, next)
			branches = append(branches, group(joinClauses(members, "&&")))
		default:
			return AQL{}, fault.InvalidInput("unsupported constraint type")
		}
	}

	if uc.ExcludeDocumentKey != "" {
		st.filter("d._key != " + st.vars.value("excludeDocumentKey", uc.ExcludeDocumentKey))
	}
	return st.filter(joinClauses(branches, "||")).add("RETURN d._key").build(), nil
}
