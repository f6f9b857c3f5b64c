package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributhor/arangotools/fault"
	"github.com/distributhor/arangotools/internal/memdb"
	"github.com/distributhor/arangotools/query"
	"github.com/distributhor/arangotools/structure"
)

func row(key, name string) map[string]any {
	return map[string]any{"_key": key, "_id": "cyclists/" + key, "_rev": "r" + key, "name": name, "country": "US"}
}

// memdb replays the queued rows, so this checks the query text and bind
// vars only. Which documents match is covered by TestArangoIntegration.
func TestFindByFilterCriteria(t *testing.T) {
	mem := memdb.NewDatabase("tour").Respond(row("1", "Lance"), row("2", "Chris"))
	db := New(mem)

	docs, err := db.FindByFilterCriteria(context.Background(), "cyclists",
		query.RawFilter(`name == "Lance" || name == "Chris"`),
		SortAsc("name"), Limit(0, 10), TrimPrivate(),
	)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Lance", docs[0]["name"])
	assert.Equal(t, "1", docs[0].Key())
	assert.NotContains(t, docs[0], "_id")
	assert.NotContains(t, docs[0], "_rev")

	require.Len(t, mem.Calls, 1)
	assert.Equal(t,
		`FOR d IN @@collection FILTER ( d.name == "Lance" || d.name == "Chris" ) SORT d.name ASC LIMIT 10 RETURN d`,
		mem.Calls[0].Query)
	assert.Equal(t, map[string]any{"@collection": "cyclists"}, mem.Calls[0].BindVars)
}

func TestFetchByPropertyValue(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour")
	db := New(mem)

	mem.Respond(row("1", "Lance"))
	doc, err := db.FetchOneByPropertyValue(ctx, "cyclists", query.NamedValue{Name: "name", Value: "Lance"}, Keep("name"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Lance"}, map[string]any(doc))
	assert.Equal(t, "FOR d IN @@collection FILTER d.@property == @value LIMIT 1 RETURN d", mem.Calls[0].Query)
	assert.Equal(t, "name", mem.Calls[0].BindVars["property"])
	assert.Equal(t, "Lance", mem.Calls[0].BindVars["value"])

	doc, err = db.FetchOneByPropertyValue(ctx, "cyclists", query.NamedValue{Name: "name", Value: "Nobody"})
	require.NoError(t, err)
	assert.Nil(t, doc)

	mem.Respond(row("1", "Lance"), row("3", "Greg"))
	docs, err := db.FetchAllByPropertyValue(ctx, "cyclists", query.NamedValue{Name: "country", Value: "US"}, Omit("country"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.NotContains(t, docs[1], "country")
}

func TestFetchByCompositeValue(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour")
	db := New(mem)
	key := query.CompositeKey{{Name: "name", Value: "Lance"}, {Name: "country", Value: "US"}}

	_, err := db.FetchAllByCompositeValue(ctx, "cyclists", key)
	require.NoError(t, err)
	assert.Contains(t, mem.Calls[0].Query, " && ")

	_, err = db.FetchAllByCompositeValue(ctx, "cyclists", key, Match(query.MatchAny))
	require.NoError(t, err)
	assert.Contains(t, mem.Calls[1].Query, " || ")

	_, err = db.FetchOneByCompositeValue(ctx, "cyclists", key)
	require.NoError(t, err)
	assert.Contains(t, mem.Calls[2].Query, "LIMIT 1 RETURN d")
}

func TestInvalidInputSkipsTheDatabase(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour")
	db := New(mem)

	_, err := db.FindByFilterCriteria(ctx, "", nil)
	assert.True(t, fault.IsInvalidInput(err))

	_, err = db.FindByFilterCriteria(ctx, "cyclists", query.ListOfFilters{})
	assert.True(t, fault.IsInvalidInput(err))

	_, err = db.FetchAllByCompositeValue(ctx, "cyclists", nil)
	assert.True(t, fault.IsInvalidInput(err))

	_, err = db.UniqueConstraintValidation(ctx, query.UniqueConstraint{Collection: "cyclists"})
	assert.True(t, fault.IsInvalidInput(err))

	_, err = db.Read(ctx, "cyclists", "")
	assert.True(t, fault.IsInvalidInput(err))

	assert.Empty(t, mem.Calls)
}

func TestUniqueConstraintValidation(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour")
	db := New(mem)
	uc := query.UniqueConstraint{
		Collection:         "cyclists",
		Constraints:        []query.Constraint{query.UniqueValue{NamedValue: query.NamedValue{Name: "email", Value: "lance@example.com"}}},
		ExcludeDocumentKey: "1",
	}

	res, err := db.UniqueConstraintValidation(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, UniqueConstraintResult{}, res)

	mem.Respond("7", "9")
	res, err = db.UniqueConstraintValidation(ctx, uc)
	require.NoError(t, err)
	assert.True(t, res.Violated)
	assert.Equal(t, []string{"7", "9"}, res.DocumentKeys)
	assert.Equal(t, "1", mem.Calls[1].BindVars["excludeDocumentKey"])
}

func TestBulkMutations(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour")
	db := New(mem)

	mem.Respond("1", "3")
	keys, err := db.UpdateDocumentsByKeyValue(ctx, "cyclists", query.NamedValue{Name: "country", Value: "US"}, map[string]any{"retired": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, keys)
	assert.Contains(t, mem.Calls[0].Query, "UPDATE d WITH @data IN @@collection RETURN NEW._key")

	mem.Respond("2")
	keys, err = db.DeleteDocumentsByKeyValue(ctx, "cyclists", query.NamedValue{Name: "country", Value: "AU"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, keys)
	assert.Contains(t, mem.Calls[1].Query, "REMOVE d IN @@collection RETURN OLD._key")
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour")
	require.NoError(t, mem.CreateCollection(ctx, "cyclists", false))
	db := New(mem)

	meta, err := db.Create(ctx, "cyclists", map[string]any{"_key": "lance", "name": "Lance"})
	require.NoError(t, err)
	assert.Equal(t, "cyclists/lance", meta.ID)

	_, err = db.Update(ctx, "cyclists", "lance", map[string]any{"wins": 7})
	require.NoError(t, err)

	doc, err := db.Read(ctx, "cyclists", "lance", TrimPrivate())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"_key": "lance", "name": "Lance", "wins": float64(7)}, map[string]any(doc))

	_, err = db.Delete(ctx, "cyclists", "lance")
	require.NoError(t, err)

	_, err = db.Read(ctx, "cyclists", "lance")
	assert.True(t, fault.IsNotFound(err))
	var f fault.Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, map[string]string{"collection": "cyclists", "key": "lance"}, f.Metadata())
}

func TestClearDB(t *testing.T) {
	ctx := context.Background()
	client := memdb.NewClient()
	conn := NewConnection(client)

	_, err := conn.CreateDBStructure(ctx, structure.DBStructure{Database: "tour", Collections: []string{"cyclists"}})
	require.NoError(t, err)
	db, err := conn.DB(ctx, "tour")
	require.NoError(t, err)

	_, err = db.Create(ctx, "cyclists", map[string]any{"name": "Lance"})
	require.NoError(t, err)
	require.NoError(t, db.ClearDB(ctx, Truncate))

	exists, err := db.CollectionExists(ctx, "cyclists")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 0, client.Get("tour").Count("cyclists"))

	require.NoError(t, db.ClearDB(ctx, Drop))
	exists, err = db.CollectionExists(ctx, "cyclists")
	require.NoError(t, err)
	assert.False(t, exists)
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
	fail error
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, false, m.fail
	}
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func TestCachedReads(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour").Respond(row("1", "Lance"))
	store := &mapStore{data: map[string][]byte{}}
	db := New(mem, WithCache(store))
	f := query.RawFilter(`name == "Lance"`)

	first, err := db.FindByFilterCriteria(ctx, "cyclists", f, Cached(time.Minute))
	require.NoError(t, err)
	second, err := db.FindByFilterCriteria(ctx, "cyclists", f, Cached(time.Minute), TrimPrivate())
	require.NoError(t, err)

	assert.Len(t, mem.Calls, 1)
	assert.Equal(t, time.Minute, store.ttl)
	assert.Equal(t, first[0]["name"], second[0]["name"])
	assert.Contains(t, first[0], "_rev")
	assert.NotContains(t, second[0], "_rev")

	// without Cached the store is bypassed
	_, err = db.FindByFilterCriteria(ctx, "cyclists", f)
	require.NoError(t, err)
	assert.Len(t, mem.Calls, 2)

	// a failing store falls back to the database
	store.fail = errors.New("redis down")
	_, err = db.FindByFilterCriteria(ctx, "cyclists", f, Cached(time.Minute))
	require.NoError(t, err)
	assert.Len(t, mem.Calls, 3)
}

func TestLazyQuery(t *testing.T) {
	ctx := context.Background()
	mem := memdb.NewDatabase("tour").Respond(row("1", "Lance"), row("2", "Chris"))
	db := New(mem)

	aql, err := query.FilterCriteriaLookup("cyclists", nil, query.Options{})
	require.NoError(t, err)
	cur, err := db.Query(ctx, aql, Keep("name"))
	require.NoError(t, err)

	var names []any
	for cur.HasMore() {
		doc, err := cur.Next(ctx)
		require.NoError(t, err)
		names = append(names, doc["name"])
	}
	require.NoError(t, cur.Close())
	assert.Equal(t, []any{"Lance", "Chris"}, names)
}

func TestQueryErrorPropagates(t *testing.T) {
	mem := memdb.NewDatabase("tour")
	boom := errors.New("boom")
	mem.Fail("Query", boom)

	_, err := New(mem).ReturnAll(context.Background(), query.AQL{Query: "RETURN 1"})
	assert.ErrorIs(t, err, boom)
}
