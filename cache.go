package galleria

import (
	"errors"
	"sync"
)

// FingerprintCache is an in-memory view of the fingerprint store shared
// by all thumbnail workers. Reads are concurrent; each output path is
// written by at most one worker per build, so a single write-through
// mutex is all the coordination required.
//
// A nil store (dry-run against a fresh output tree) behaves as an
// always-empty cache: every lookup misses and nothing is recorded.
type FingerprintCache struct {
	mu      sync.RWMutex
	records map[string]ThumbRecord
	loaded  bool
	store   *Store
}

// NewFingerprintCache creates a FingerprintCache backed by the given
// store, which may be nil.
func NewFingerprintCache(s *Store) *FingerprintCache {
	return &FingerprintCache{store: s}
}

func (c *FingerprintCache) load() error {
	if c.loaded {
		return nil
	}
	c.records = make(map[string]ThumbRecord)
	if c.store != nil {
		recs, err := c.store.List()
		if err != nil {
			return err
		}
		for _, rec := range recs {
			c.records[rec.OutPath] = rec
		}
	}
	c.loaded = true
	return nil
}

// ensureLoaded populates the map from the store on first use. It tries
// a read lock first; only takes the write lock if a load is needed.
func (c *FingerprintCache) ensureLoaded() error {
	c.mu.RLock()
	if c.loaded {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Lookup returns the record for the thumbnail at outPath, if any.
func (c *FingerprintCache) Lookup(outPath string) (ThumbRecord, bool, error) {
	if err := c.ensureLoaded(); err != nil {
		return ThumbRecord{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[outPath]
	return rec, ok, nil
}

// Record stores rec in memory and writes it through to the store.
// Called only by the worker that generated the thumbnail, after the
// file itself has been renamed into place.
func (c *FingerprintCache) Record(rec ThumbRecord) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		if err := c.store.Put(rec); err != nil {
			return err
		}
	}
	c.records[rec.OutPath] = rec
	return nil
}

// Forget drops the record for outPath from memory and the store, used
// when its thumbnail is pruned.
func (c *FingerprintCache) Forget(outPath string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, outPath)
	if c.store != nil {
		if err := c.store.Delete(outPath); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}
