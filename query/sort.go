package query

import "strconv"

type SortOrder string

const (
	Ascending  SortOrder = "ASC"
	Descending SortOrder = "DESC"
)

// Sort orders results by a document property. Property is written into the
// query text unchanged.
type Sort struct {
	Property string
	Order    SortOrder
}

// Limit restricts the result window.
type Limit struct {
	Offset int
	Count  int
}

// Options are shared by the lookup builders.
type Options struct {
	Match MatchType
	Sort  *Sort
	Limit *Limit
}

func (s *Sort) clause() string {
	if s == nil || s.Property == "" {
		return ""
	}
	out := "SORT d." + s.Property
	if s.Order != "" {
		out += " " + string(s.Order)
	}
	return out
}

func (l *Limit) clause() string {
	if l == nil || l.Count <= 0 {
		return ""
	}
	if l.Offset > 0 {
		return "LIMIT " + strconv.Itoa(l.Offset) + ", " + strconv.Itoa(l.Count)
	}
	return "LIMIT " + strconv.Itoa(l.Count)
}
