package tagstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-chanmux/internal/core/metrics"
	"github.com/dep2p/go-chanmux/internal/core/storage"
	"github.com/dep2p/go-chanmux/internal/core/storage/kv"
	"github.com/dep2p/go-chanmux/internal/core/tag"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
	"github.com/dep2p/go-chanmux/pkg/types"
)

var logger = log.Logger("core/tagstore")

// 持久化键
var (
	defsPrefix    = []byte("d/")
	generationKey = []byte("m/generation")
)

// Option 存储选项
type Option func(*options)

type options struct {
	kv        *kv.Store
	metrics   *metrics.Metrics
	partition types.PartitionID
}

// WithKV 持久化到 kv，键空间应由调用方按 kind 隔离
func WithKV(s *kv.Store) Option {
	return func(o *options) { o.kv = s }
}

// WithMetrics 记录重新加载与视图缓存指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithPartition 设置数据集分区，传递给所有 Delegate
func WithPartition(p types.PartitionID) Option {
	return func(o *options) { o.partition = p }
}

// Store 一种元素的标签数据集
//
// Current 无锁返回当前快照；Reload 与 LoadPersisted 串行执行。
type Store[T comparable] struct {
	cfg      Config
	resolver Resolver[T]
	opts     options
	factory  *tag.Factory[T]

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot[T]]
	closed   atomic.Bool
}

var _ pkgif.TagSource[string] = (*Store[string])(nil)

// New 创建标签存储，初始为空快照（版本 0）
func New[T comparable](cfg Config, resolver Resolver[T], opts ...Option) (*Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[T]{
		cfg:      cfg,
		resolver: resolver,
		opts:     o,
	}
	s.current.Store(emptySnapshot[T]())
	s.factory = tag.NewFactory[T](s,
		tag.WithPartition(o.partition),
		tag.WithMetrics(o.metrics),
	)
	return s, nil
}

// Current 返回当前快照
func (s *Store[T]) Current() pkgif.TagSnapshot[T] {
	return s.current.Load()
}

// Snapshot 返回当前快照的具体类型
func (s *Store[T]) Snapshot() *Snapshot[T] {
	return s.current.Load()
}

// Tag 返回标签的身份稳定包装
func (s *Store[T]) Tag(id types.Identifier) *tag.Delegate[T] {
	return s.factory.Create(id)
}

// Factory 返回标签包装工厂
func (s *Store[T]) Factory() *tag.Factory[T] {
	return s.factory
}

// Config 返回配置
func (s *Store[T]) Config() Config {
	return s.cfg
}

// Reload 从数据包重新加载全部标签
//
// 单个文件或标签的问题只记录日志。快照替换后才写入存储，
// 持久化失败时新快照仍然生效并返回错误。
func (s *Store[T]) Reload(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	defs, problems, err := LoadPacks(s.cfg.Packs, s.cfg.Kind)
	if err != nil {
		return err
	}
	if problems != nil {
		logger.Warn("跳过无效的标签文件", "kind", s.cfg.Kind, "error", problems)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.publish(defs, s.current.Load().generation+1)

	var persistErr error
	if s.cfg.Persist && s.opts.kv != nil {
		if persistErr = s.persist(snap); persistErr != nil {
			logger.Warn("持久化标签定义失败", "kind", s.cfg.Kind, "error", persistErr)
			persistErr = fmt.Errorf("tagstore: persist: %w", persistErr)
		}
	}

	s.factory.MarkReloaded()
	s.opts.metrics.ObserveTagReload()

	logger.Info("标签已重新加载",
		"kind", s.cfg.Kind,
		"generation", snap.generation,
		"tags", snap.Len())
	return persistErr
}

// publish 解析定义并原子替换快照，调用方持有 reloadMu
func (s *Store[T]) publish(defs map[types.Identifier]*Definition, generation uint64) *Snapshot[T] {
	values, dropped := resolveAll(defs, s.resolver)
	for id, err := range dropped {
		logger.Warn("丢弃无法解析的标签",
			"kind", s.cfg.Kind,
			"tag", id.String(),
			"error", err)
	}

	snap := &Snapshot[T]{
		generation: generation,
		tags:       values,
		defs:       defs,
	}
	s.current.Store(snap)
	return snap
}

// persist 在一个事务中替换全部定义与版本号
func (s *Store[T]) persist(snap *Snapshot[T]) error {
	entries := make(map[string][]byte, len(snap.defs))
	for id, def := range snap.defs {
		data, err := json.Marshal(def)
		if err != nil {
			return err
		}
		entries[id.String()] = data
	}

	return s.opts.kv.Update(func(txn *kv.Txn) error {
		if err := txn.DeletePrefix(defsPrefix); err != nil {
			return err
		}
		for k, v := range entries {
			if err := txn.Set([]byte(string(defsPrefix)+k), v); err != nil {
				return err
			}
		}
		return txn.SetUint64(generationKey, snap.generation)
	})
}

// LoadPersisted 从存储恢复上次持久化的定义
//
// 没有持久化数据时返回 false。版本号取持久化值与当前值中较大者加一。
func (s *Store[T]) LoadPersisted() (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if s.opts.kv == nil {
		return false, nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	persistedGen, err := s.opts.kv.GetUint64(generationKey)
	if storage.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	defs := make(map[types.Identifier]*Definition)
	var decodeErr error
	err = s.opts.kv.PrefixScan(defsPrefix, func(key, value []byte) bool {
		id, err := types.ParseIdentifier(string(key[len(defsPrefix):]))
		if err != nil {
			decodeErr = err
			return false
		}
		var def Definition
		if err := json.Unmarshal(value, &def); err != nil {
			decodeErr = err
			return false
		}
		defs[id] = &def
		return true
	})
	if err != nil {
		return false, err
	}
	if decodeErr != nil {
		return false, fmt.Errorf("tagstore: decode persisted definitions: %w", decodeErr)
	}

	gen := s.current.Load().generation
	if persistedGen > gen {
		gen = persistedGen
	}
	snap := s.publish(defs, gen+1)
	s.factory.MarkReloaded()
	s.opts.metrics.ObserveTagReload()

	logger.Info("已恢复持久化的标签",
		"kind", s.cfg.Kind,
		"generation", snap.generation,
		"tags", snap.Len())
	return true, nil
}

// Close 关闭存储，之后 Reload 返回 ErrClosed
//
// 已发布的快照仍可读取。
func (s *Store[T]) Close() error {
	s.closed.Store(true)
	return nil
}
