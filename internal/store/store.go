// Package store is the persistence service: JSON documents addressed by key,
// with shallow-merge writes and change subscriptions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Document is a stored document split into its top-level fields.
type Document map[string]json.RawMessage

// Clone copies the field map. Field values are treated as immutable.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Store is a key-value document store.
type Store interface {
	// Get returns the document at key. ok is false when it does not exist.
	Get(ctx context.Context, key string) (doc Document, ok bool, err error)
	// Put shallow-merges fields into the document at key, creating it if absent.
	Put(ctx context.Context, key string, fields Document) error
	// Subscribe delivers the current document immediately and again after
	// every change until ctx is done. Slow readers only see the latest version.
	Subscribe(ctx context.Context, key string) (<-chan Document, error)
	Close() error
}

// ErrPersistence marks every failure coming out of a backend.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError wraps a backend failure. errors.Is matches both
// ErrPersistence and the underlying error.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// kv is the raw byte storage a backend provides.
type kv interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	set(ctx context.Context, key string, value []byte) error
	close() error
}

// docStore implements Store on top of any kv backend.
type docStore struct {
	mu      sync.Mutex
	backend kv
	hub     *hub
}

func newDocStore(backend kv) *docStore {
	return &docStore{backend: backend, hub: newHub()}
}

func (s *docStore) Get(ctx context.Context, key string) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, key)
}

func (s *docStore) load(ctx context.Context, key string) (Document, bool, error) {
	raw, ok, err := s.backend.get(ctx, key)
	if err != nil {
		return nil, false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return doc, true, nil
}

func (s *docStore) Put(ctx context.Context, key string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	merged := current.Clone()
	for k, v := range fields {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := s.backend.set(ctx, key, raw); err != nil {
		return &PersistenceError{Op: "put", Key: key, Err: err}
	}
	s.hub.publish(key, merged)
	return nil
}

func (s *docStore) Subscribe(ctx context.Context, key string) (<-chan Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		current = Document{}
	}
	return s.hub.subscribe(ctx, key, current), nil
}

func (s *docStore) Close() error {
	s.hub.closeAll()
	return s.backend.close()
}
