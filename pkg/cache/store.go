package cache

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/l3aro/go-pygraph/pkg/graph"
)

const prefixGraph = "graph:"

// Store keeps several graph snapshots in one badger directory, one per key.
type Store struct {
	db  *badger.DB
	dir string
}

// OpenStore opens (or creates) a store at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db, dir: dir}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Cache returns the cache stored under key.
func (s *Store) Cache(key string) *StoreCache {
	return &StoreCache{store: s, key: key}
}

// Keys lists the stored graph keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixGraph)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), prefixGraph))
		}
		return nil
	})
	return keys, err
}

func graphKey(key string) []byte { return []byte(prefixGraph + key) }

// StoreCache is a Cache backed by one key of a Store.
type StoreCache struct {
	store *Store
	key   string
}

func (c *StoreCache) Path() string { return c.store.dir + "#" + c.key }

func (c *StoreCache) Exists() bool {
	err := c.store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(graphKey(c.key))
		return err
	})
	return err == nil
}

func (c *StoreCache) Load() (*graph.Graph, error) {
	var data []byte
	err := c.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(graphKey(c.key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Path(), err)
	}
	return decodeSnapshot(bytes.NewReader(data))
}

func (c *StoreCache) Save(g *graph.Graph) error {
	var buf bytes.Buffer
	if err := encodeSnapshot(&buf, g); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	return c.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(graphKey(c.key), buf.Bytes())
	})
}

// Delete removes the snapshot. A missing key is not an error.
func (c *StoreCache) Delete() error {
	return c.store.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(graphKey(c.key))
	})
}
