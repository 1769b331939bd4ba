package channel

import (
	"sync"

	"github.com/dep2p/go-chanmux/pkg/channelids"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// Entry 注册表条目
type Entry struct {
	ID      types.Identifier
	Handler pkgif.ChannelHandler
}

// Registry 全局默认处理器注册表
//
// 进程级配置，通常在任何连接建立前填充。每个会话在握手时
// 把这里的条目复制到自己的处理器表中。
type Registry struct {
	mu       sync.RWMutex
	handlers map[types.Identifier]pkgif.ChannelHandler
	order    []types.Identifier
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[types.Identifier]pkgif.ChannelHandler),
	}
}

// Register 注册默认处理器
func (r *Registry) Register(id types.Identifier, handler pkgif.ChannelHandler) error {
	if err := checkRegistration(id, handler); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[id]; exists {
		return ErrDuplicateChannel
	}
	r.handlers[id] = handler
	r.order = append(r.order, id)
	return nil
}

// Unregister 注销默认处理器
//
// 已经握手的会话不受影响。
func (r *Registry) Unregister(id types.Identifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[id]; !exists {
		return ErrUnknownChannel
	}
	delete(r.handlers, id)
	r.order = removeID(r.order, id)
	return nil
}

// Get 获取默认处理器
func (r *Registry) Get(id types.Identifier) (pkgif.ChannelHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[id]
	return h, ok
}

// Entries 按注册顺序返回全部条目
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, Entry{ID: id, Handler: r.handlers[id]})
	}
	return entries
}

// Len 返回条目数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// checkRegistration 注册前的公共校验
func checkRegistration(id types.Identifier, handler pkgif.ChannelHandler) error {
	if handler == nil {
		return ErrNilHandler
	}
	if err := id.Validate(); err != nil {
		return err
	}
	if channelids.IsReserved(id) {
		return ErrReservedChannel
	}
	return nil
}

// removeID 从有序列表中移除 id，保持其余顺序
func removeID(ids []types.Identifier, id types.Identifier) []types.Identifier {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
