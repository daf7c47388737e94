package store

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

type leveldbKV struct {
	db *leveldb.DB
}

// NewLevelDBStore opens a LevelDB-backed document store in dir.
func NewLevelDBStore(dir string) (Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	log.WithField("dir", dir).Info("leveldb document store opened")
	return newDocStore(&leveldbKV{db: db}), nil
}

// NewLevelDBMemStore is a LevelDB store over in-memory storage.
func NewLevelDBMemStore() (Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return newDocStore(&leveldbKV{db: db}), nil
}

func (l *leveldbKV) get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (l *leveldbKV) set(_ context.Context, key string, value []byte) error {
	return l.db.Put([]byte(key), value, nil)
}

func (l *leveldbKV) close() error { return l.db.Close() }
