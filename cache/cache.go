// Package cache keeps materialized query results in Redis, or in process,
// so repeated read queries skip the database. It is opt-in per call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/distributhor/arangotools/internal"
	"github.com/distributhor/arangotools/query"
)

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	// Get returns ok == false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config selects the backend: Redis when Addr is set, in-process otherwise.
type Config struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	Size     int           `yaml:"size"`
	TTL      time.Duration `yaml:"ttl"`
}

// RedisStore implements Store on top of *redis.Client.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects lazily; the first command dials.
func NewRedisStore(cfg Config) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return WrapRedis(rdb, cfg.Prefix)
}

// WrapRedis wraps an existing go-redis client.
func WrapRedis(c *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "arangotools:"
	}
	return &RedisStore{client: c, prefix: prefix}
}

func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := rs.client.Get(ctx, rs.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (rs *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rs.client.Set(ctx, rs.prefix+key, value, ttl).Err()
}

// Ping checks the connection.
func (rs *RedisStore) Ping(ctx context.Context) error { return rs.client.Ping(ctx).Err() }

// Close conveniently closes the underlying *redis.Client.
func (rs *RedisStore) Close() error { return rs.client.Close() }

// Key derives a cache key from the database name and the query. Bind vars
// are hashed in key order so equal queries map to equal keys.
func Key(database string, aql query.AQL) (string, error) {
	h := xxhash.New()
	_, _ = h.WriteString(database)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(aql.Query)

	for _, k := range internal.SortedKeys(aql.BindVars) {
		v, err := json.Marshal(aql.BindVars[k])
		if err != nil {
			return "", fmt.Errorf("cache: bind var %q is not serializable: %w", k, err)
		}
		_, _ = h.WriteString("\x00" + k + "=")
		_, _ = h.Write(v)
	}
	return database + ":" + strconv.FormatUint(h.Sum64(), 16), nil
}
