package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketTransitions = []byte("transitions") // sequence -> Record JSON

// boltStore implements Store using BoltDB.
type boltStore struct {
	db *bolt.DB
	mu sync.RWMutex
}

// NewBoltStore opens (creating if needed) a BoltDB-backed journal at
// path.
//
// Parameters:
//   - path: Journal database file; parent directories are created
//
// Returns:
//   - Configured Store
//   - Error if the database cannot be opened
func NewBoltStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// Initialize bucket.
	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketTransitions)
		return createErr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create transitions bucket: %w", err)
	}

	return &boltStore{
		db: db,
	}, nil
}

// Append implements Store.Append.
func (s *boltStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransitions)

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if putErr := b.Put(key, data); putErr != nil {
			return fmt.Errorf("failed to store record: %w", putErr)
		}

		return nil
	})
}

// Recent implements Store.Recent.
func (s *boltStore) Recent(n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil, nil
	}

	var records []Record

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTransitions).Cursor()

		// Big-endian sequence keys sort chronologically, so walking
		// backwards from the end yields newest first.
		for k, v := c.Last(); k != nil && len(records) < n; k, v = c.Prev() {
			var rec Record
			if unmarshalErr := json.Unmarshal(v, &rec); unmarshalErr != nil {
				return fmt.Errorf("failed to unmarshal record: %w", unmarshalErr)
			}
			records = append(records, rec)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Close implements Store.Close.
func (s *boltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

// memoryStore implements Store using an in-memory slice.
// Useful for testing and for running with the journal disabled.
type memoryStore struct {
	records []Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an in-memory journal.
func NewMemoryStore() Store {
	return &memoryStore{}
}

// Append implements Store.Append.
func (s *memoryStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// Recent implements Store.Recent.
func (s *memoryStore) Recent(n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil, nil
	}
	if n > len(s.records) {
		n = len(s.records)
	}

	out := make([]Record, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}

	return out, nil
}

// Close implements Store.Close.
func (s *memoryStore) Close() error {
	return nil
}
