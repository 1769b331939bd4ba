package tag

import (
	"sync"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// Factory 绑定到一个数据集的标签包装工厂
//
// 同一个 ID 总是返回同一个 Delegate，重新加载后旧引用依然有效。
type Factory[T comparable] struct {
	source pkgif.TagSource[T]
	opts   []Option

	mu        sync.Mutex
	delegates map[types.Identifier]*Delegate[T]
	order     []types.Identifier
}

// NewFactory 创建工厂，opts 应用到每个创建的 Delegate
func NewFactory[T comparable](source pkgif.TagSource[T], opts ...Option) *Factory[T] {
	return &Factory[T]{
		source:    source,
		opts:      opts,
		delegates: make(map[types.Identifier]*Delegate[T]),
	}
}

// Create 返回 id 对应的 Delegate，不存在时创建
func (f *Factory[T]) Create(id types.Identifier) *Delegate[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d, ok := f.delegates[id]; ok {
		return d
	}
	d := NewDelegate(id, f.source, f.opts...)
	f.delegates[id] = d
	f.order = append(f.order, id)
	return d
}

// Delegates 按创建顺序返回全部 Delegate
func (f *Factory[T]) Delegates() []*Delegate[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*Delegate[T], 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.delegates[id])
	}
	return out
}

// MarkReloaded 通知全部已创建的 Delegate 完成了一次完整重新加载
//
// 由数据集所有者在每个重新加载周期调用一次。
func (f *Factory[T]) MarkReloaded() {
	for _, d := range f.Delegates() {
		d.MarkReloaded()
	}
}
