package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-chanmux/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// DB BadgerDB 封装
type DB struct {
	db     *badger.DB
	cfg    Config
	closed atomic.Bool

	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
}

// Open 打开数据库
func Open(cfg Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("存储已打开", "path", cfg.Path, "inMemory", cfg.InMemory)
	return &DB{db: db, cfg: cfg}, nil
}

// Start 启动后台垃圾回收
func (d *DB) Start() error {
	if d.closed.Load() {
		return ErrClosed
	}
	if d.cfg.GCInterval <= 0 || d.cfg.InMemory || d.gcCancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.gcCancel = cancel
	d.gcWg.Add(1)
	go func() {
		defer d.gcWg.Done()

		ticker := time.NewTicker(d.cfg.GCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// 反复回收，直到没有可回收的空间
				for d.db.RunValueLogGC(d.cfg.GCDiscardRatio) == nil {
				}
			}
		}
	}()
	return nil
}

// Get 读取值
func (d *DB) Get(key []byte) ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, convertError(err)
}

// Put 写入值
func (d *DB) Put(key, value []byte) error {
	return d.Update(func(txn *Txn) error {
		return txn.Set(key, value)
	})
}

// Delete 删除键
func (d *DB) Delete(key []byte) error {
	return d.Update(func(txn *Txn) error {
		return txn.Delete(key)
	})
}

// Has 检查键是否存在
func (d *DB) Has(key []byte) (bool, error) {
	_, err := d.Get(key)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// Update 在一个读写事务中执行 fn，fn 返回 nil 时提交
func (d *DB) Update(fn func(txn *Txn) error) error {
	if d.closed.Load() {
		return ErrClosed
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		return fn(&Txn{txn: txn})
	})
	return convertError(err)
}

// PrefixScan 遍历前缀下的键值对，fn 返回 false 时停止
//
// 传给 fn 的切片只在回调期间有效。
func (d *DB) PrefixScan(prefix []byte, fn func(key, value []byte) bool) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !fn(item.Key(), value) {
				return nil
			}
		}
		return nil
	})
}

// Close 关闭数据库，可重复调用
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	if d.gcCancel != nil {
		d.gcCancel()
		d.gcWg.Wait()
	}
	return d.db.Close()
}

// Txn 读写事务
type Txn struct {
	txn *badger.Txn
}

// Get 在事务中读取值
func (t *Txn) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	item, err := t.txn.Get(key)
	if err != nil {
		return nil, convertError(err)
	}
	return item.ValueCopy(nil)
}

// Set 在事务中写入值
func (t *Txn) Set(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return convertError(t.txn.Set(key, value))
}

// Delete 在事务中删除键
func (t *Txn) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return convertError(t.txn.Delete(key))
}

// DeletePrefix 删除前缀下的全部键
func (t *Txn) DeletePrefix(prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := t.txn.Delete(k); err != nil {
			return convertError(err)
		}
	}
	return nil
}

// convertError 转换 BadgerDB 错误
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound
	case errors.Is(err, badger.ErrEmptyKey):
		return ErrEmptyKey
	case errors.Is(err, badger.ErrDBClosed):
		return ErrClosed
	default:
		return err
	}
}
