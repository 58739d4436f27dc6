package lily

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

const cacheKeyPrefix = "render:"

// Cache remembers render outputs keyed by source hash and stem
type Cache struct {
	db *badger.DB
}

// OpenCache opens a persistent cache at path, or an in-memory one when path is empty
func OpenCache(path string) (*Cache, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open render cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// SourceHash returns the hex sha256 of a LilyPond source
func SourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

func cacheKey(source, stem string) []byte {
	return []byte(cacheKeyPrefix + SourceHash(source) + ":" + stem)
}

// Get returns the stored output when every file it names still exists
func (c *Cache) Get(source, stem string) (*Output, bool) {
	var out Output
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(source, stem))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, false
	}
	if !out.filesExist() {
		return nil, false
	}
	return &out, true
}

// Put stores an output
func (c *Cache) Put(source, stem string, out *Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode render output: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(source, stem), data)
	})
}

// Delete forgets an output
func (c *Cache) Delete(source, stem string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(source, stem))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close releases the database
func (c *Cache) Close() error {
	return c.db.Close()
}
