package query

import (
	"strings"

	"github.com/distributhor/arangotools/internal"
)

// logicalOperators are the markers a filter string is split on. The order
// only matters for ties, which cannot happen between these two.
var logicalOperators = []string{"||", "&&"}

// Compose splits a filter string into clauses at && and || and runs every
// clause through PrefixClause. Operators are kept verbatim and in order:
//
//	age > 5 && LIKE(name, "%a%", true)  ➜  d.age > 5 && LIKE(d.name, "%a%", true)
//
// It is exported so callers can preview the expression that ends up in a
// FILTER statement.
func Compose(filter string) string {
	ops := Locate(logicalOperators, filter, true)
	if len(ops) == 0 {
		return PrefixClause(filter)
	}

	sb := internal.GetBuilder()
	defer internal.PutBuilder(sb)

	cut := 0
	// one more pass than there are operators for the trailing clause
	for i := 0; i <= len(ops); i++ {
		end := len(filter)
		if i < len(ops) {
			end = ops[i].Index
		}

		sb.WriteString(PrefixClause(filter[cut:end]))

		if i < len(ops) {
			sb.WriteByte(' ')
			sb.WriteString(filter[ops[i].Index : ops[i].Index+len(ops[i].Value)])
			sb.WriteByte(' ')
			cut = ops[i].Index + len(ops[i].Value)
		}
	}
	return sb.String()
}

// Clauses returns the prefixed clauses of filter without the operators.
func Clauses(filter string) []string {
	ops := Locate(logicalOperators, filter, true)

	out := make([]string, 0, len(ops)+1)
	cut := 0
	for _, op := range ops {
		out = append(out, PrefixClause(filter[cut:op.Index]))
		cut = op.Index + len(op.Value)
	}
	return append(out, PrefixClause(filter[cut:]))
}

// joinClauses writes clauses separated by op, padded with single spaces.
func joinClauses(clauses []string, op string) string {
	return strings.Join(clauses, " "+op+" ")
}
