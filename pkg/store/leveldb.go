package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelStore keeps entries in a local LevelDB directory.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevel opens (or creates) the LevelDB database at path.
func OpenLevel(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		// 单 key 场景, 不需要大的写缓冲
		WriteBuffer: 64 * opt.KiB,
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

// OpenLevelMemory opens a LevelDB instance backed by memory storage.
func OpenLevelMemory() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open memory leveldb: %w", err)
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(_ context.Context, key string) (string, error) {
	val, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("leveldb get %s: %w", key, err)
	}
	return string(val), nil
}

func (s *LevelStore) Set(_ context.Context, key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("leveldb put %s: %w", key, err)
	}
	return nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}
