package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultLocalSize = 1024

type entry struct {
	value   []byte
	expires time.Time
}

// LocalStore is an in-process LRU Store for single-instance deployments.
// Entries expire after their ttl and are evicted least recently used first
// once size is reached.
type LocalStore struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

// NewLocalStore holds up to size entries; size <= 0 means 1024.
func NewLocalStore(size int) (*LocalStore, error) {
	if size <= 0 {
		size = defaultLocalSize
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &LocalStore{lru: c, now: time.Now}, nil
}

func (ls *LocalStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := ls.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !ls.now().Before(e.expires) {
		ls.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value. A non-positive ttl keeps it until evicted.
func (ls *LocalStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = ls.now().Add(ttl)
	}
	ls.lru.Add(key, e)
	return nil
}

func (ls *LocalStore) Len() int { return ls.lru.Len() }

func (ls *LocalStore) Close() error {
	ls.lru.Purge()
	return nil
}

// Open builds the Store described by cfg: Redis when Addr is set, an
// in-process LRU of cfg.Size entries otherwise.
func Open(cfg Config) (Store, error) {
	if cfg.Addr != "" {
		return NewRedisStore(cfg), nil
	}
	return NewLocalStore(cfg.Size)
}
