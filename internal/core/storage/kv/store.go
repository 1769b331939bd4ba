package kv

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dep2p/go-chanmux/internal/core/storage"
)

// Store 带前缀隔离的键值存储
type Store struct {
	db     *storage.DB
	prefix []byte
}

// New 创建 Store，所有键自动加上 prefix
func New(db *storage.DB, prefix []byte) *Store {
	return &Store{db: db, prefix: append([]byte(nil), prefix...)}
}

// Sub 返回追加了子前缀的 Store
func (s *Store) Sub(prefix []byte) *Store {
	return New(s.db, s.prefixKey(prefix))
}

func (s *Store) prefixKey(key []byte) []byte {
	out := make([]byte, len(s.prefix)+len(key))
	copy(out, s.prefix)
	copy(out[len(s.prefix):], key)
	return out
}

// Get 读取值
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.db.Get(s.prefixKey(key))
}

// Put 写入值
func (s *Store) Put(key, value []byte) error {
	return s.db.Put(s.prefixKey(key), value)
}

// Delete 删除键
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(s.prefixKey(key))
}

// Has 检查键是否存在
func (s *Store) Has(key []byte) (bool, error) {
	return s.db.Has(s.prefixKey(key))
}

// GetJSON 读取并反序列化 JSON 值
func (s *Store) GetJSON(key []byte, v interface{}) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// PutJSON 序列化并写入 JSON 值
func (s *Store) PutJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}

// GetUint64 读取 uint64 值
func (s *Store) GetUint64(key []byte) (uint64, error) {
	data, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, ErrCorrupted
	}
	return binary.BigEndian.Uint64(data), nil
}

// PutUint64 写入 uint64 值
func (s *Store) PutUint64(key []byte, value uint64) error {
	return s.Put(key, encodeUint64(value))
}

// PrefixScan 遍历子前缀下的键值对
//
// 回调中的 key 已去除 Store 的前缀，但保留 subPrefix。
func (s *Store) PrefixScan(subPrefix []byte, fn func(key, value []byte) bool) error {
	return s.db.PrefixScan(s.prefixKey(subPrefix), func(key, value []byte) bool {
		return fn(key[len(s.prefix):], value)
	})
}

// Keys 返回子前缀下的全部键
func (s *Store) Keys(subPrefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.PrefixScan(subPrefix, func(key, _ []byte) bool {
		keys = append(keys, append([]byte(nil), key...))
		return true
	})
	return keys, err
}

// Update 在一个事务中执行 fn，fn 看到的键同样自动加前缀
func (s *Store) Update(fn func(txn *Txn) error) error {
	return s.db.Update(func(txn *storage.Txn) error {
		return fn(&Txn{store: s, txn: txn})
	})
}

// Txn 带前缀的事务
type Txn struct {
	store *Store
	txn   *storage.Txn
}

// Set 写入值
func (t *Txn) Set(key, value []byte) error {
	return t.txn.Set(t.store.prefixKey(key), value)
}

// SetUint64 写入 uint64 值
func (t *Txn) SetUint64(key []byte, value uint64) error {
	return t.Set(key, encodeUint64(value))
}

// Delete 删除键
func (t *Txn) Delete(key []byte) error {
	return t.txn.Delete(t.store.prefixKey(key))
}

// DeletePrefix 删除子前缀下的全部键
func (t *Txn) DeletePrefix(subPrefix []byte) error {
	return t.txn.DeletePrefix(t.store.prefixKey(subPrefix))
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
