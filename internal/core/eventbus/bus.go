package eventbus

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("eventbus: invalid event type")
	// ErrNonPointerType 非指针类型
	ErrNonPointerType = errors.New("eventbus: subscribe called with non-pointer type")
	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("eventbus: emitter is closed")
	// ErrListenerPanic 监听器 panic
	ErrListenerPanic = errors.New("eventbus: listener panicked")
	// ErrBusClosed 总线已关闭
	ErrBusClosed = errors.New("eventbus: bus closed")
)

// defaultBuffer 默认订阅缓冲区大小
const defaultBuffer = 16

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 异步事件总线
type Bus struct {
	mu     sync.RWMutex
	nodes  map[reflect.Type]*node
	closed atomic.Bool
}

// node 事件类型节点
type node struct {
	lk        sync.Mutex
	typ       reflect.Type
	sinks     []*Subscription
	nEmitters atomic.Int32
	keepLast  bool
	last      interface{}
	dropCount atomic.Int64
}

var _ pkgif.EventBus = (*Bus)(nil)

// NewBus 创建新的事件总线
func NewBus() *Bus {
	return &Bus{
		nodes: make(map[reflect.Type]*node),
	}
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(eventType interface{}, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	elemType, err := elemTypeOf(eventType)
	if err != nil {
		return nil, err
	}

	settings := &pkgif.SubscriptionSettings{Buffer: defaultBuffer}
	for _, opt := range opts {
		opt(settings)
	}

	sub := &Subscription{
		bus: b,
		typ: elemType,
		out: make(chan interface{}, settings.Buffer),
	}

	b.withNode(elemType, func(n *node) {
		n.sinks = append(n.sinks, sub)

		// 有状态节点先补发最后一个事件
		if n.keepLast && n.last != nil {
			sub.deliver(n.last)
		}
	})

	return sub, nil
}

// Emitter 获取发射器
func (b *Bus) Emitter(eventType interface{}, opts ...pkgif.EmitterOpt) (pkgif.Emitter, error) {
	elemType, err := elemTypeOf(eventType)
	if err != nil {
		return nil, err
	}

	settings := &pkgif.EmitterSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	var n *node
	b.withNode(elemType, func(nd *node) {
		n = nd
		n.nEmitters.Add(1)
		if settings.Stateful {
			n.keepLast = true
		}
	})

	return &Emitter{bus: b, node: n, typ: elemType}, nil
}

// Subscriptions 返回当前订阅总数
func (b *Bus) Subscriptions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, n := range b.nodes {
		n.lk.Lock()
		total += len(n.sinks)
		n.lk.Unlock()
	}
	return total
}

// Close 关闭全部订阅，之后 Subscribe 返回 ErrBusClosed
//
// 已有发射器仍可调用 Emit，事件没有接收方。
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.RLock()
	var subs []*Subscription
	for _, n := range b.nodes {
		n.lk.Lock()
		subs = append(subs, n.sinks...)
		n.lk.Unlock()
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

// elemTypeOf 校验事件类型必须是指针，并返回元素类型
func elemTypeOf(eventType interface{}) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

// ============================================================================
// 内部方法
// ============================================================================

// withNode 在节点上执行操作，节点不存在时创建
func (b *Bus) withNode(typ reflect.Type, cb func(*node)) {
	b.mu.Lock()

	n, ok := b.nodes[typ]
	if !ok {
		n = &node{typ: typ}
		b.nodes[typ] = n
	}

	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
}

// tryDropNode 没有订阅者和发射器时删除节点
func (b *Bus) tryDropNode(typ reflect.Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[typ]
	if !ok {
		return
	}

	n.lk.Lock()
	idle := len(n.sinks) == 0 && n.nEmitters.Load() == 0
	n.lk.Unlock()

	if idle {
		delete(b.nodes, typ)
	}
}

// removeSub 移除订阅
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.Lock()
	n, ok := b.nodes[sub.typ]
	if !ok {
		b.mu.Unlock()
		return
	}

	n.lk.Lock()
	b.mu.Unlock()

	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}

	shouldDrop := len(n.sinks) == 0 && n.nEmitters.Load() == 0
	n.lk.Unlock()

	if shouldDrop {
		b.tryDropNode(sub.typ)
	}
}

// emit 发射事件到所有订阅者，缓冲区满时丢弃
func (n *node) emit(event interface{}) {
	n.lk.Lock()
	defer n.lk.Unlock()

	if n.keepLast {
		n.last = event
	}

	for _, sub := range n.sinks {
		if !sub.deliver(event) {
			dropped := n.dropCount.Add(1)

			// 每丢弃 100 个事件警告一次，避免日志泛滥
			if dropped%100 == 1 {
				logger.Warn("慢消费者检测",
					"dropped", dropped,
					"type", n.typ,
					"reason", "subscriber buffer full")
			}
		}
	}
}
