// Package bbolt implements ports.ReportCache using bbolt (embedded B+ tree).
// Reports live in a single "reports" bucket keyed by the caller's digest.
// Writes are transactional: a crash mid-write cannot corrupt previously
// committed entries.
package bbolt

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/lintpipe/internal/ports"
)

var bucketReports = []byte("reports")

// Cache implements ports.ReportCache backed by bbolt.
type Cache struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (or creates) a cache database at path. A second process holding
// the file makes Open fail after one second instead of blocking.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReports)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the report stored under key. Returns nil, false, nil on a miss.
// An entry that no longer decodes counts as a miss and is left for Put or
// Prune to replace.
func (c *Cache) Get(key string) (*ports.Report, bool, error) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketReports).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bbolt get: %w", err)
	}
	if data == nil {
		return nil, false, nil
	}

	e, err := decodeEntry(data)
	if err != nil {
		return nil, false, nil
	}
	return e.report, true, nil
}

// Put stores report under key, overwriting any prior entry.
func (c *Cache) Put(key string, report *ports.Report) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	data, err := encodeEntry(entry{storedAt: c.now(), report: report})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReports).Put([]byte(key), data)
	})
}

// Prune deletes entries stored before now-maxAge, plus any entry that fails
// to decode. Returns the number removed.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	cutoff := c.now().Add(-maxAge)
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			storedAt, err := decodeStoredAt(v)
			if err != nil || storedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bbolt prune: %w", err)
	}
	return removed, nil
}

// Len returns the number of cached reports.
func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketReports).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketReports); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketReports)
		return err
	})
}
