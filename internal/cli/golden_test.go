package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestQueryBuildGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name string
		args []string
	}{
		{"filter", []string{"--filter", `name == "Lance" || name == "Chris"`, "--sort", "name", "--limit", "5"}},
		{"equality", []string{"--eq", "country=US", "--eq", "wins=7", "--match", "all"}},
		{"search", []string{"--search", "name", "--search", "surname", "--term", "arm", "--term", "str", "--match", "all"}},
		{"nested", []string{"--eq", "address.city=Austin", "--offset", "10", "--limit", "20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"query", "build", "-C", "cyclists"}, tt.args...)...)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(out))
		})
	}
}
