package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixClause(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comparison", "age > 5", "d.age > 5"},
		{"function call", `LIKE(name, "x", true)`, `LIKE(d.name, "x", true)`},
		{"function call with padding", `LIKE( name, "x", true )`, `LIKE(d.name, "x", true)`},
		{"nested path", `address.city == "Paris"`, `d.address.city == "Paris"`},
		{"surrounding whitespace", "  age > 5  ", "d.age > 5"},
		{"already qualified", `d.name == "Lance"`, `d.name == "Lance"`},
		{"already qualified argument", `LIKE(d.name, "x")`, `LIKE(d.name, "x")`},
		{"only first argument", `CONTAINS(name, nickname)`, `CONTAINS(d.name, nickname)`},
		{"stray closing paren", "age > 5 )", "d.age > 5)"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrefixClause(tt.input))
		})
	}
}
