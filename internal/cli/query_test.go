package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributhor/arangotools/cache"
	"github.com/distributhor/arangotools/config"
	"github.com/distributhor/arangotools/internal/memdb"
	"github.com/distributhor/arangotools/query"
	"github.com/distributhor/arangotools/repository"
)

func withConfig(t *testing.T, c config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestConfiguredTTLCachesReads(t *testing.T) {
	withConfig(t, config.Config{Cache: &cache.Config{TTL: time.Minute}})

	ctx := context.Background()
	mem := memdb.NewDatabase("tour").Respond(map[string]any{"_key": "1", "name": "Lance"})
	store, err := cache.NewLocalStore(8)
	require.NoError(t, err)
	db := repository.New(mem, repository.WithCache(store))

	aql, err := query.FilterCriteriaLookup("cyclists", query.RawFilter(`name == "Lance"`), query.Options{})
	require.NoError(t, err)

	f := queryFlags{}
	for i := 0; i < 2; i++ {
		docs, err := db.ReturnAll(ctx, aql, f.readOpts()...)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Lance", docs[0]["name"])
	}
	assert.Len(t, mem.Calls, 1)
	assert.Equal(t, 1, store.Len())
}

func TestReadOpts(t *testing.T) {
	withConfig(t, config.Config{})
	assert.Empty(t, queryFlags{}.readOpts())
	assert.Len(t, queryFlags{trim: true, cacheTTL: time.Second}.readOpts(), 2)

	withConfig(t, config.Config{Cache: &cache.Config{TTL: time.Minute}})
	assert.Len(t, queryFlags{}.readOpts(), 1)
}
