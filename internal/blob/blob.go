// Package blob provides the on-device mirror for the sync engine: an
// opaque key-value store of encoded payloads backed by Badger.
package blob

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned by Get when no payload exists under a key.
var ErrNotFound = errors.New("blob: key not found")

// Store wraps a Badger database instance holding cached collections and
// engine bookkeeping. Callers treat values as opaque byte payloads.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the blob store at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Blob store opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the payload stored under key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read key %s: %w", key, err)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores the payload under key, replacing any existing value.
func (s *Store) Set(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("failed to write key %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes the payload under key. Deleting a missing key is not
// an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// GetJSON decodes the payload under key into out. A missing key or a
// payload that no longer decodes is reported as ErrNotFound so callers
// degrade to "cache empty" rather than failing.
func (s *Store) GetJSON(key string, out any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		if s.logger != nil {
			s.logger.Warn("Discarding undecodable cached payload",
				"key", key,
				"error", err,
			)
		}
		return ErrNotFound
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func (s *Store) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for key %s: %w", key, err)
	}
	return s.Set(key, data)
}
