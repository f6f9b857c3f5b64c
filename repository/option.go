package repository

import (
	"time"

	"github.com/distributhor/arangotools/query"
	"github.com/distributhor/arangotools/scan"
)

// fetchOptions collects what the Opt helpers set for a single call.
type fetchOptions struct {
	query    query.Options
	matchSet bool
	trim     scan.Trim
	cacheTTL time.Duration
}

// Opt is applied to the options of one read call. Helpers that make no
// sense for a call are ignored by it: Match has no effect on Read, Limit
// has no effect on FetchOne*.
type Opt interface {
	apply(*fetchOptions)
}

// optFunc is a concrete Opt implementation.
type optFunc func(*fetchOptions)

func (o optFunc) apply(fo *fetchOptions) {
	if o != nil {
		o(fo)
	}
}

func collect(defaultMatch query.MatchType, opts []Opt) fetchOptions {
	fo := fetchOptions{}
	for _, o := range opts {
		if o != nil {
			o.apply(&fo)
		}
	}
	if !fo.matchSet {
		fo.query.Match = defaultMatch
	}
	return fo
}

// ---------- QUERY helpers ----------

// Limit restricts the result window. A non-positive count disables it.
func Limit(offset, count int) Opt {
	return optFunc(func(fo *fetchOptions) {
		fo.query.Limit = &query.Limit{Offset: offset, Count: count}
	})
}

// SortAsc SORT
func SortAsc(property string) Opt  { return sortOpt(property, query.Ascending) }
func SortDesc(property string) Opt { return sortOpt(property, query.Descending) }

func sortOpt(property string, order query.SortOrder) Opt {
	return optFunc(func(fo *fetchOptions) {
		fo.query.Sort = &query.Sort{Property: property, Order: order}
	})
}

// Match sets how several property values or filters combine.
func Match(m query.MatchType) Opt {
	return optFunc(func(fo *fetchOptions) {
		fo.query.Match = m
		fo.matchSet = true
	})
}

// ---------- RESULT helpers ----------

// TrimPrivate drops the _id and _rev style fields, keeping _key.
func TrimPrivate() Opt {
	return optFunc(func(fo *fetchOptions) { fo.trim.Private = true })
}

// Keep returns only the named fields.
func Keep(fields ...string) Opt {
	return optFunc(func(fo *fetchOptions) { fo.trim.Keep = append(fo.trim.Keep, fields...) })
}

// Omit drops the named fields. Ignored when Keep is also given.
func Omit(fields ...string) Opt {
	return optFunc(func(fo *fetchOptions) { fo.trim.Omit = append(fo.trim.Omit, fields...) })
}

// Cached serves the result from the DB's cache.Store when present, and
// stores fresh results for ttl. Without a store it does nothing.
func Cached(ttl time.Duration) Opt {
	return optFunc(func(fo *fetchOptions) { fo.cacheTTL = ttl })
}
