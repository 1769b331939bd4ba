package channel

import (
	"sync"

	"github.com/dep2p/go-chanmux/pkg/types"
)

// PeerBook 对端声明支持的通道集合
//
// 只记录对端通过控制帧声明的能力，不会创建本地处理器。
// 发送前可以查询对端是否支持某个通道。
type PeerBook struct {
	mu       sync.RWMutex
	channels map[types.Identifier]struct{}
	order    []types.Identifier
}

// NewPeerBook 创建通道簿
func NewPeerBook() *PeerBook {
	return &PeerBook{
		channels: make(map[types.Identifier]struct{}),
	}
}

// Add 添加通道，返回之前不存在的那部分（保持输入顺序、去重）
func (pb *PeerBook) Add(ids ...types.Identifier) []types.Identifier {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	var added []types.Identifier
	for _, id := range ids {
		if _, ok := pb.channels[id]; ok {
			continue
		}
		pb.channels[id] = struct{}{}
		pb.order = append(pb.order, id)
		added = append(added, id)
	}
	return added
}

// Remove 移除通道，返回实际存在并被移除的那部分
func (pb *PeerBook) Remove(ids ...types.Identifier) []types.Identifier {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	var removed []types.Identifier
	for _, id := range ids {
		if _, ok := pb.channels[id]; !ok {
			continue
		}
		delete(pb.channels, id)
		pb.order = removeID(pb.order, id)
		removed = append(removed, id)
	}
	return removed
}

// Supports 检查对端是否声明支持该通道
func (pb *PeerBook) Supports(id types.Identifier) bool {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	_, ok := pb.channels[id]
	return ok
}

// Channels 按声明顺序返回副本
func (pb *PeerBook) Channels() []types.Identifier {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	result := make([]types.Identifier, len(pb.order))
	copy(result, pb.order)
	return result
}

// Clear 清空
func (pb *PeerBook) Clear() {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.channels = make(map[types.Identifier]struct{})
	pb.order = nil
}
