package tag

import (
	"fmt"
	"sync/atomic"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// target 不可变的 (版本, 视图) 对
type target[T comparable] struct {
	generation uint64
	view       *View[T]
}

// Delegate 标签的身份稳定包装
//
// 对象在数据集多次重新加载之间保持不变，只有内部缓存指针被原子替换。
// Get 与 Contains 可以从任意 goroutine 并发调用，不加锁。
type Delegate[T comparable] struct {
	id     types.Identifier
	source pkgif.TagSource[T]
	opts   options

	cached  atomic.Pointer[target[T]]
	reloads atomic.Int32

	// 数据集尚未发布任何版本时返回的视图
	empty *View[T]
}

// NewDelegate 创建标签包装
func NewDelegate[T comparable](id types.Identifier, source pkgif.TagSource[T], opts ...Option) *Delegate[T] {
	return &Delegate[T]{
		id:     id,
		source: source,
		opts:   buildOptions(opts),
		empty:  NewView[T](nil),
	}
}

// ID 返回标签 ID
func (d *Delegate[T]) ID() types.Identifier {
	return d.id
}

// Partition 返回所属分区
func (d *Delegate[T]) Partition() types.PartitionID {
	return d.opts.partition
}

// Get 返回当前版本的标签视图
//
// 缓存版本与数据集当前版本相同则直接返回缓存，否则重新计算并发布。
// 发布竞争失败时优先返回胜出者的视图，使同一版本的读者看到同一个实例。
func (d *Delegate[T]) Get() *View[T] {
	snap := d.source.Current()
	if snap == nil {
		return d.empty
	}
	gen := snap.Generation()

	cur := d.cached.Load()
	if cur != nil && cur.generation == gen {
		d.opts.metrics.ObserveTagView(true)
		return cur.view
	}

	d.opts.metrics.ObserveTagView(false)
	fresh := &target[T]{
		generation: gen,
		view:       NewView(snap.Tag(d.id)),
	}
	if d.cached.CompareAndSwap(cur, fresh) {
		return fresh.view
	}

	if winner := d.cached.Load(); winner != nil && winner.generation == gen {
		return winner.view
	}
	return fresh.view
}

// Values 返回当前版本的元素副本
func (d *Delegate[T]) Values() []T {
	return d.Get().Values()
}

// Contains 检查元素是否属于标签
//
// 来自其他分区的元素返回 ErrCrossPartitionLookup，此时结果无意义。
func (d *Delegate[T]) Contains(x T) (bool, error) {
	if err := d.checkPartition(x); err != nil {
		return false, err
	}
	return d.Get().Contains(x), nil
}

func (d *Delegate[T]) checkPartition(x T) error {
	if d.opts.partition != "" {
		if p, ok := any(x).(types.Partitioned); ok && p.Partition() != d.opts.partition {
			return fmt.Errorf("%w: tag %s in %q, element from %q",
				ErrCrossPartitionLookup, d.id, d.opts.partition, p.Partition())
		}
	}
	if d.opts.foreign != nil && d.opts.foreign(x) {
		return fmt.Errorf("%w: tag %s", ErrCrossPartitionLookup, d.id)
	}
	return nil
}

// MarkReloaded 数据集完整重新加载一次后调用
func (d *Delegate[T]) MarkReloaded() {
	d.reloads.Add(1)
}

// WasReloaded 自创建以来是否经历过至少一次完整重新加载
func (d *Delegate[T]) WasReloaded() bool {
	return d.reloads.Load() > 0
}

// ReloadCount 返回完整重新加载次数
func (d *Delegate[T]) ReloadCount() int {
	return int(d.reloads.Load())
}

// String 返回 "#namespace:path"
func (d *Delegate[T]) String() string {
	return "#" + d.id.String()
}
