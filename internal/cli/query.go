package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/distributhor/arangotools/query"
	"github.com/distributhor/arangotools/repository"
)

var composeClauses bool

var composeCmd = &cobra.Command{
	Use:   "compose <filter>",
	Short: "Qualify the property names of a filter expression",
	Long: `Prefix every clause of a filter expression with the iteration variable.

Examples:
  arangotools compose 'name == "Lance" || name == "Chris"'
  arangotools compose --clauses 'age > 30 && LIKE(name, "%an%", true)'`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{offline: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if composeClauses {
			for _, c := range query.Clauses(args[0]) {
				fmt.Fprintln(w, c)
			}
			return nil
		}
		fmt.Fprintln(w, query.Compose(args[0]))
		return nil
	},
}

// queryFlags are shared by query build and query run.
type queryFlags struct {
	collection string
	filter     string
	eq         []string
	search     []string
	terms      []string
	match      string
	sort       string
	desc       bool
	offset     int
	limit      int
	trim       bool
	cacheTTL   time.Duration
}

var qf queryFlags

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Build or run lookup queries",
}

var queryBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Print the AQL and bind variables of a lookup",
	Long: `Print the AQL and bind variables of a lookup without connecting.

Examples:
  arangotools query build -C cyclists --filter 'name == "Lance" || name == "Chris"'
  arangotools query build -C cyclists --eq country=US --eq wins=7 --match all
  arangotools query build -C cyclists --search name --search team --term arm --sort name`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{offline: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		aql, err := qf.build()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), aql)
	},
}

var queryRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a lookup against the configured database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		aql, err := qf.build()
		if err != nil {
			return err
		}
		db, release, err := database(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		docs, err := db.ReturnAll(cmd.Context(), aql, qf.readOpts()...)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), docs)
	},
}

func init() {
	composeCmd.Flags().BoolVar(&composeClauses, "clauses", false, "print one qualified clause per line")

	for _, c := range []*cobra.Command{queryBuildCmd, queryRunCmd} {
		f := c.Flags()
		f.StringVarP(&qf.collection, "collection", "C", "", "collection to query")
		f.StringVar(&qf.filter, "filter", "", "filter expression, e.g. 'age > 30 && team == \"X\"'")
		f.StringArrayVar(&qf.eq, "eq", nil, "property=value equality, repeatable")
		f.StringArrayVar(&qf.search, "search", nil, "property to search, repeatable")
		f.StringArrayVar(&qf.terms, "term", nil, "search term, repeatable")
		f.StringVar(&qf.match, "match", "any", "how values, terms or groups combine: any or all")
		f.StringVar(&qf.sort, "sort", "", "property to sort by")
		f.BoolVar(&qf.desc, "desc", false, "sort descending")
		f.IntVar(&qf.offset, "offset", 0, "number of results to skip")
		f.IntVar(&qf.limit, "limit", 0, "maximum number of results")
		_ = c.MarkFlagRequired("collection")
	}
	queryRunCmd.Flags().BoolVar(&qf.trim, "trim", false, "drop _id and _rev fields")
	queryRunCmd.Flags().DurationVar(&qf.cacheTTL, "cache", 0, "serve from and fill the configured cache for this long (default cache.ttl)")

	queryCmd.AddCommand(queryBuildCmd, queryRunCmd)
	rootCmd.AddCommand(composeCmd, queryCmd)
}

// build picks the lookup from the flags given: a search, equality values,
// or a filter.
func (f queryFlags) build() (query.AQL, error) {
	match, err := parseMatch(f.match)
	if err != nil {
		return query.AQL{}, err
	}
	opts := query.Options{Match: match}
	if f.sort != "" {
		opts.Sort = &query.Sort{Property: f.sort, Order: query.Ascending}
		if f.desc {
			opts.Sort.Order = query.Descending
		}
	}
	if f.limit > 0 {
		opts.Limit = &query.Limit{Offset: f.offset, Count: f.limit}
	}

	var filter query.Filter
	if f.filter != "" {
		filter = query.RawFilter(f.filter)
	}

	switch {
	case len(f.search) > 0 || len(f.terms) > 0:
		return query.CriteriaLookup(f.collection, query.Criteria{
			Search: &query.SearchTerms{Properties: f.search, Terms: f.terms, Match: match},
			Filter: filter,
			Match:  match,
		}, opts)
	case len(f.eq) > 0:
		if filter != nil {
			return query.AQL{}, fmt.Errorf("--eq and --filter cannot be combined")
		}
		values, err := parseNamedValues(f.eq)
		if err != nil {
			return query.AQL{}, err
		}
		return query.EqualityLookup(f.collection, values, opts)
	default:
		return query.FilterCriteriaLookup(f.collection, filter, opts)
	}
}

// readOpts trims and caches as asked. Without --cache the TTL of the
// configured cache applies.
func (f queryFlags) readOpts() []repository.Opt {
	var opts []repository.Opt
	if f.trim {
		opts = append(opts, repository.TrimPrivate())
	}
	ttl := f.cacheTTL
	if ttl <= 0 && cfg.Cache != nil {
		ttl = cfg.Cache.TTL
	}
	if ttl > 0 {
		opts = append(opts, repository.Cached(ttl))
	}
	return opts
}

func parseMatch(s string) (query.MatchType, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return query.MatchAny, nil
	case "all":
		return query.MatchAll, nil
	default:
		return 0, fmt.Errorf("invalid match %q: use any or all", s)
	}
}

// parseNamedValues reads property=value pairs. Values that are valid JSON
// (numbers, booleans, quoted strings) are decoded, anything else is taken
// as a plain string.
func parseNamedValues(pairs []string) ([]query.NamedValue, error) {
	out := make([]query.NamedValue, 0, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --eq %q: expected property=value", p)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out = append(out, query.NamedValue{Name: strings.TrimSpace(name), Value: v})
	}
	return out, nil
}
