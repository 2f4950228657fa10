// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// Cache is the explicit keyed store for analysis bundles, owned by the
// orchestrator: submission fingerprint in, AnalysisBundle out. It is
// embedded BadgerDB rather than ambient package state, and invalidation
// is an explicit operation.
type Cache struct {
	db *badger.DB
}

// CacheConfig configures the bundle cache.
type CacheConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string
	// InMemory avoids disk entirely; used by tests.
	InMemory bool
}

// OpenCache opens (or creates) the cache store.
func OpenCache(cfg CacheConfig) (*Cache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open bundle cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheEntry is the stored envelope: the fingerprint guards staleness.
type cacheEntry struct {
	Fingerprint string                `json:"fingerprint"`
	Bundle      domain.AnalysisBundle `json:"bundle"`
}

func cacheKey(submissionID string) []byte {
	return []byte("bundle/" + submissionID)
}

// Get returns the cached bundle for a submission if its fingerprint
// still matches. A stale or absent entry is a miss, never an error.
func (c *Cache) Get(submissionID, fingerprint string) (*domain.AnalysisBundle, bool) {
	var entry cacheEntry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(submissionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		slog.Warn("bundle cache read failed, treating as miss",
			"submission", submissionID, "error", err)
		return nil, false
	}
	if entry.Fingerprint != fingerprint {
		return nil, false
	}
	return &entry.Bundle, true
}

// Put stores a bundle under the submission's current fingerprint.
func (c *Cache) Put(submissionID, fingerprint string, bundle *domain.AnalysisBundle) error {
	data, err := json.Marshal(cacheEntry{Fingerprint: fingerprint, Bundle: *bundle})
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(submissionID), data)
	})
}

// Invalidate drops a submission's cached bundle.
func (c *Cache) Invalidate(submissionID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(cacheKey(submissionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
