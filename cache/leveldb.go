package cache

import (
	"context"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelCache keeps mirror collections in a LevelDB directory on local disk.
type LevelCache struct {
	db *leveldb.DB
}

func NewLevelCache(path string) (*LevelCache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelCache{db: db}, nil
}

func (c *LevelCache) Get(_ context.Context, key string) (string, error) {
	val, err := c.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (c *LevelCache) Set(_ context.Context, key, value string) error {
	return c.db.Put([]byte(key), []byte(value), nil)
}

func (c *LevelCache) Delete(_ context.Context, key string) error {
	return c.db.Delete([]byte(key), nil)
}

func (c *LevelCache) Close() error {
	return c.db.Close()
}
