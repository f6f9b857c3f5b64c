package query

import (
	"regexp"
	"strings"
)

// iterVar is the loop variable every builder iterates with.
const iterVar = "d."

var (
	openParen  = regexp.MustCompile(`\(\s*`)
	closeParen = regexp.MustCompile(`\s+\)`)
)

// PrefixClause qualifies the property a single filter clause refers to with
// the iteration variable:
//
//	age > 5                  ➜ d.age > 5
//	LIKE(name, "x", true)    ➜ LIKE(d.name, "x", true)
//
// Only the left operand, or the first argument of a function call, is
// treated as a property. Clauses that already start with "d." are left
// alone. The clause must not contain top-level && or ||.
func PrefixClause(clause string) string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return ""
	}

	switch {
	case strings.Contains(clause, "("):
		loc := openParen.FindStringIndex(clause)
		rest := clause[loc[1]:]
		if !strings.HasPrefix(rest, iterVar) {
			rest = iterVar + rest
		}
		return closeParen.ReplaceAllString(clause[:loc[0]]+"("+rest, ")")

	case strings.Contains(clause, ")"):
		return closeParen.ReplaceAllString(qualify(clause), ")")

	default:
		return qualify(clause)
	}
}

func qualify(clause string) string {
	if strings.HasPrefix(clause, iterVar) {
		return clause
	}
	return iterVar + clause
}
