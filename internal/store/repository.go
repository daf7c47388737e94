package store

import (
	"context"
	"fmt"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// GlobalBurnKey addresses the process-wide burn statistics document.
const GlobalBurnKey = "global:burn"

// HolderKey addresses a holder's document.
func HolderKey(holderID string) string { return "holder:" + holderID }

// Open selects a backend by name: "memory", "sqlite", "leveldb" or "file".
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path)
	case "leveldb":
		return NewLevelDBStore(path)
	case "file":
		return NewFileStore(path)
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

// Repository maps typed records onto store documents. Absent documents and
// absent fields decode to defaults.
type Repository struct {
	store    Store
	defaults func(nowMillis int64) model.UserRecord
}

func NewRepository(s Store, rates model.SeedRates) *Repository {
	return &Repository{
		store: s,
		defaults: func(nowMillis int64) model.UserRecord {
			return model.DefaultUserRecord(rates, nowMillis)
		},
	}
}

// Default returns the record a new holder starts with.
func (r *Repository) Default(nowMillis int64) model.UserRecord {
	return r.defaults(nowMillis)
}

// LoadUser reads a holder record. exists reports whether a document was found.
func (r *Repository) LoadUser(ctx context.Context, holderID string, nowMillis int64) (rec model.UserRecord, exists bool, err error) {
	doc, ok, err := r.store.Get(ctx, HolderKey(holderID))
	if err != nil {
		return model.UserRecord{}, false, err
	}
	rec, err = model.DecodeUserRecord(doc, r.defaults(nowMillis))
	if err != nil {
		return model.UserRecord{}, false, &PersistenceError{Op: "decode", Key: HolderKey(holderID), Err: err}
	}
	return rec, ok, nil
}

// SaveUser writes every section of the record in one Put.
func (r *Repository) SaveUser(ctx context.Context, holderID string, rec model.UserRecord) error {
	fields, err := rec.Fields()
	if err != nil {
		return &PersistenceError{Op: "encode", Key: HolderKey(holderID), Err: err}
	}
	return r.store.Put(ctx, HolderKey(holderID), Document(fields))
}

// WatchUser streams typed snapshots of a holder record.
func (r *Repository) WatchUser(ctx context.Context, holderID string, nowMillis int64) (<-chan model.UserRecord, error) {
	docs, err := r.store.Subscribe(ctx, HolderKey(holderID))
	if err != nil {
		return nil, err
	}
	out := make(chan model.UserRecord, 1)
	go func() {
		defer close(out)
		for doc := range docs {
			rec, err := model.DecodeUserRecord(doc, r.defaults(nowMillis))
			if err != nil {
				continue
			}
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (r *Repository) LoadGlobalBurn(ctx context.Context) (model.GlobalBurnStats, error) {
	doc, _, err := r.store.Get(ctx, GlobalBurnKey)
	if err != nil {
		return model.GlobalBurnStats{}, err
	}
	g, err := model.DecodeGlobalBurn(doc)
	if err != nil {
		return model.GlobalBurnStats{}, &PersistenceError{Op: "decode", Key: GlobalBurnKey, Err: err}
	}
	return g, nil
}

func (r *Repository) SaveGlobalBurn(ctx context.Context, g model.GlobalBurnStats) error {
	fields, err := model.EncodeGlobalBurn(g)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: GlobalBurnKey, Err: err}
	}
	return r.store.Put(ctx, GlobalBurnKey, Document(fields))
}
