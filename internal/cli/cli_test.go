package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributhor/arangotools/query"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	qf = queryFlags{}
	composeClauses = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompose(t *testing.T) {
	out, err := run(t, "compose", `name == "Lance" || name == "Chris"`)
	require.NoError(t, err)
	assert.Equal(t, "d.name == \"Lance\" || d.name == \"Chris\"\n", out)

	out, err = run(t, "compose", "--clauses", `age > 30 && team == "X"`)
	require.NoError(t, err)
	assert.Equal(t, "d.age > 30\nd.team == \"X\"\n", out)
}

func TestQueryBuild(t *testing.T) {
	out, err := run(t, "query", "build", "-C", "cyclists",
		"--filter", `name == "Lance" || name == "Chris"`, "--sort", "name", "--desc", "--limit", "5")
	require.NoError(t, err)

	var aql query.AQL
	require.NoError(t, json.Unmarshal([]byte(out), &aql))
	assert.Equal(t,
		`FOR d IN @@collection FILTER ( d.name == "Lance" || d.name == "Chris" ) SORT d.name DESC LIMIT 5 RETURN d`,
		aql.Query)
	assert.Equal(t, "cyclists", aql.BindVars["@collection"])
}

func TestQueryBuildEquality(t *testing.T) {
	out, err := run(t, "query", "build", "-C", "cyclists", "--eq", "country=US", "--eq", "wins=7", "--match", "all")
	require.NoError(t, err)

	var aql query.AQL
	require.NoError(t, json.Unmarshal([]byte(out), &aql))
	assert.Contains(t, aql.Query, " && ")
	assert.Equal(t, "US", aql.BindVars["country_val_1"])
	assert.Equal(t, float64(7), aql.BindVars["wins_val_2"])
}

func TestQueryBuildSearch(t *testing.T) {
	out, err := run(t, "query", "build", "-C", "cyclists", "--search", "name", "--term", "arm")
	require.NoError(t, err)

	var aql query.AQL
	require.NoError(t, json.Unmarshal([]byte(out), &aql))
	assert.Contains(t, aql.Query, "LIKE(d.@search_prop_1, @search_term_1, true)")
	assert.Equal(t, "%arm%", aql.BindVars["search_term_1"])
}

func TestQueryBuildErrors(t *testing.T) {
	_, err := run(t, "query", "build", "--filter", "x == 1")
	assert.Error(t, err)

	_, err = run(t, "query", "build", "-C", "cyclists", "--match", "some")
	assert.ErrorContains(t, err, "invalid match")

	_, err = run(t, "query", "build", "-C", "cyclists", "--eq", "novalue")
	assert.ErrorContains(t, err, "expected property=value")

	_, err = run(t, "query", "build", "-C", "cyclists", "--eq", "a=1", "--filter", "b == 2")
	assert.ErrorContains(t, err, "cannot be combined")
}

func TestOnlineCommandsNeedConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := run(t, "--config", missing, "structure", "validate")
	assert.ErrorContains(t, err, "cannot read config")
}

func TestParseNamedValues(t *testing.T) {
	values, err := parseNamedValues([]string{"name=Lance", "wins=7", "retired=true", `nick="7"`, "address.city=Austin"})
	require.NoError(t, err)
	assert.Equal(t, []query.NamedValue{
		{Name: "name", Value: "Lance"},
		{Name: "wins", Value: float64(7)},
		{Name: "retired", Value: true},
		{Name: "nick", Value: "7"},
		{Name: "address.city", Value: "Austin"},
	}, values)
}
