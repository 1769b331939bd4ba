package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chanmux/internal/core/storage"
)

func newStore(t *testing.T, prefix string) (*Store, *storage.DB) {
	t.Helper()
	db, err := storage.Open(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, []byte(prefix)), db
}

// TestStore_Prefix 测试前缀隔离
func TestStore_Prefix(t *testing.T) {
	s, db := newStore(t, "t/")

	require.NoError(t, s.Put([]byte("x"), []byte("1")))

	raw, err := db.Get([]byte("t/x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), raw)

	sub := s.Sub([]byte("channels/"))
	require.NoError(t, sub.Put([]byte("y"), []byte("2")))
	ok, err := db.Has([]byte("t/channels/y"))
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := s.Keys(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("channels/y"), []byte("x")}, keys)
}

// TestStore_TypedValues 测试 JSON 与 uint64 值
func TestStore_TypedValues(t *testing.T) {
	s, _ := newStore(t, "m/")

	type record struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	}
	in := record{Name: "logs", Values: []string{"oak"}}
	require.NoError(t, s.PutJSON([]byte("r"), in))

	var out record
	require.NoError(t, s.GetJSON([]byte("r"), &out))
	assert.Equal(t, in, out)

	require.NoError(t, s.PutUint64([]byte("n"), 42))
	n, err := s.GetUint64([]byte("n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	require.NoError(t, s.Put([]byte("bad"), []byte("x")))
	_, err = s.GetUint64([]byte("bad"))
	assert.ErrorIs(t, err, ErrCorrupted)

	_, err = s.GetUint64([]byte("none"))
	assert.True(t, storage.IsNotFound(err))
}

// TestStore_Update 测试带前缀事务
func TestStore_Update(t *testing.T) {
	s, _ := newStore(t, "t/")
	require.NoError(t, s.Put([]byte("d/x"), []byte("1")))

	require.NoError(t, s.Update(func(txn *Txn) error {
		if err := txn.DeletePrefix([]byte("d/")); err != nil {
			return err
		}
		if err := txn.Set([]byte("d/y"), []byte("2")); err != nil {
			return err
		}
		return txn.SetUint64([]byte("gen"), 7)
	}))

	keys, err := s.Keys(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("d/y"), []byte("gen")}, keys)

	gen, err := s.GetUint64([]byte("gen"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), gen)
}
