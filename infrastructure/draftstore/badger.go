package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"reelcut/domain/draft"
)

const draftPrefix = "draft:"

// BadgerStore implements draft.Store on an embedded Badger database.
// Keys are "draft:<projectID>", values are the draft JSON payload.
type BadgerStore struct {
	db *badger.DB
}

// Open creates or opens a draft database at the given path
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open draft database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens an ephemeral store (for tests and dry runs)
func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open in-memory draft database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database
func (s *BadgerStore) Close() error { return s.db.Close() }

// Save implements draft.Store
func (s *BadgerStore) Save(ctx context.Context, projectID string, d *draft.Draft) error {
	buf, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("could not encode draft: %w", err)
	}
	key := []byte(draftPrefix + projectID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
	if err != nil {
		return fmt.Errorf("could not save draft for %s: %w", projectID, err)
	}
	return nil
}

// Load implements draft.Store
func (s *BadgerStore) Load(ctx context.Context, projectID string) (*draft.Draft, error) {
	key := []byte(draftPrefix + projectID)
	var d draft.Draft
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &d)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not load draft for %s: %w", projectID, err)
	}
	return &d, nil
}

// Delete implements draft.Store
func (s *BadgerStore) Delete(ctx context.Context, projectID string) error {
	key := []byte(draftPrefix + projectID)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("could not delete draft for %s: %w", projectID, err)
	}
	return nil
}

// List implements draft.Store
func (s *BadgerStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(draftPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, draftPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list drafts: %w", err)
	}
	return ids, nil
}

// LoggingStore wraps a draft.Store with debug logging
type LoggingStore struct {
	next   draft.Store
	logger zerolog.Logger
}

// NewLoggingStore decorates a store with structured logging
func NewLoggingStore(next draft.Store, logger zerolog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Save implements draft.Store
func (s *LoggingStore) Save(ctx context.Context, projectID string, d *draft.Draft) error {
	err := s.next.Save(ctx, projectID, d)
	s.logger.Debug().Str("project", projectID).Err(err).Time("savedAt", d.SavedAt).Msg("draft saved")
	return err
}

// Load implements draft.Store
func (s *LoggingStore) Load(ctx context.Context, projectID string) (*draft.Draft, error) {
	d, err := s.next.Load(ctx, projectID)
	if err == nil {
		s.logger.Debug().Str("project", projectID).Int("clips", len(d.Clips)).Msg("draft loaded")
	}
	return d, err
}

// Delete implements draft.Store
func (s *LoggingStore) Delete(ctx context.Context, projectID string) error {
	s.logger.Debug().Str("project", projectID).Msg("draft discarded")
	return s.next.Delete(ctx, projectID)
}

// List implements draft.Store
func (s *LoggingStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

// Ensure the stores implement draft.Store
var (
	_ draft.Store = (*BadgerStore)(nil)
	_ draft.Store = (*LoggingStore)(nil)
)
