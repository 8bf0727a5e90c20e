// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package poster

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cinematch/internal/cache"
)

// Store caches poster paths by movie id. An empty path is a negative entry:
// TMDB was asked and had no poster.
type Store interface {
	// Name labels the store in metrics.
	Name() string
	Get(movieID int) (path string, found bool, err error)
	Set(movieID int, path string, ttl time.Duration) error
}

// MemoryStore keeps paths in a bounded LRU.
type MemoryStore struct {
	lru *cache.LRU[int, string]
}

// NewMemoryStore creates a memory store holding at most size entries.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: cache.NewLRU[int, string](size, ttl)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(movieID int) (string, bool, error) {
	path, ok := m.lru.Get(movieID)
	return path, ok, nil
}

func (m *MemoryStore) Set(movieID int, path string, ttl time.Duration) error {
	m.lru.SetWithTTL(movieID, path, ttl)
	return nil
}

// Stats exposes the LRU counters.
func (m *MemoryStore) Stats() cache.Stats {
	return m.lru.Stats()
}

// Key prefix for BadgerDB storage
const posterKeyPrefix = "poster:"

// ErrStoreClosed is returned by BadgerStore after Close.
var ErrStoreClosed = errors.New("poster store is closed")

// BadgerStore persists poster paths across restarts. Entries expire through
// Badger's per-key TTL.
type BadgerStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	closed bool

	gcRatio float64
}

// OpenBadgerStore opens (or creates) a store in dir. An empty dir opens an
// in-memory database, which is what the tests use.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for posters: %w", err)
	}
	return &BadgerStore{db: db, gcRatio: 0.5}, nil
}

func (s *BadgerStore) Name() string { return "store" }

func posterKey(movieID int) []byte {
	return []byte(posterKeyPrefix + strconv.Itoa(movieID))
}

// Get returns the stored path for a movie.
func (s *BadgerStore) Get(movieID int) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrStoreClosed
	}

	var path string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(posterKey(movieID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			path = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get poster %d: %w", movieID, err)
	}
	return path, true, nil
}

// Set stores path for ttl.
func (s *BadgerStore) Set(movieID int, path string, ttl time.Duration) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(posterKey(movieID), []byte(path))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set poster %d: %w", movieID, err)
		}
		return nil
	})
}

// RunGC runs value-log garbage collection until nothing is left to rewrite.
// It reports whether at least one file was rewritten.
func (s *BadgerStore) RunGC() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrStoreClosed
	}

	rewritten := false
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, fmt.Errorf("run GC: %w", err)
		}
		rewritten = true
	}
}

// Close flushes and closes the database. It is safe to call twice.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
