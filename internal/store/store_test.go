package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	ldb, err := NewLevelDBStore(filepath.Join(t.TempDir(), "ldb"))
	require.NoError(t, err)
	mem, err := NewLevelDBMemStore()
	require.NoError(t, err)
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	out := map[string]Store{
		"file":        fs,
		"memory":      NewMemoryStore(),
		"sqlite":      sq,
		"leveldb":     ldb,
		"leveldb-mem": mem,
	}
	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestStore_GetPutMerge(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "holder:a")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Put(ctx, "holder:a", Document{"x": raw(`1`), "y": raw(`"keep"`)}))
			require.NoError(t, s.Put(ctx, "holder:a", Document{"x": raw(`2`), "z": raw(`true`)}))

			doc, ok, err := s.Get(ctx, "holder:a")
			require.NoError(t, err)
			require.True(t, ok)
			require.JSONEq(t, `2`, string(doc["x"]))
			require.JSONEq(t, `"keep"`, string(doc["y"]))
			require.JSONEq(t, `true`, string(doc["z"]))
		})
	}
}

func TestStore_Subscribe(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ch, err := s.Subscribe(ctx, "holder:b")
			require.NoError(t, err)
			first := <-ch
			require.Empty(t, first)

			require.NoError(t, s.Put(ctx, "holder:b", Document{"n": raw(`7`)}))
			select {
			case doc := <-ch:
				require.JSONEq(t, `7`, string(doc["n"]))
			case <-time.After(time.Second):
				t.Fatal("no update delivered")
			}

			cancel()
			require.Eventually(t, func() bool {
				select {
				case _, open := <-ch:
					return !open
				default:
					return false
				}
			}, time.Second, 10*time.Millisecond)
		})
	}
}

type failingKV struct{ err error }

func (f failingKV) get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (f failingKV) set(context.Context, string, []byte) error          { return f.err }
func (f failingKV) close() error                                       { return nil }

func TestStore_PersistenceErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	s := newDocStore(failingKV{err: cause})
	err := s.Put(context.Background(), "k", Document{"a": raw(`1`)})
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, cause)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "put", pe.Op)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", "")
	require.Error(t, err)
}

func TestFileStore_ReopenAndLayout(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "docs")

	s, err := Open("file", dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, HolderKey("alice"), Document{"holder": raw(`{"a":1}`)}))
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(dir, "holder:alice.json"))
	require.NoError(t, err)

	s, err = Open("file", dir)
	require.NoError(t, err)
	defer s.Close()
	doc, ok, err := s.Get(ctx, HolderKey("alice"))
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(doc["holder"]))
}
