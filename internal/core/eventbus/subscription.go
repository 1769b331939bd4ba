package eventbus

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Subscription 单一事件类型的订阅
//
// 投递不阻塞发射方：缓冲区满时事件被丢弃并计入 Dropped。
// Close 之后 Out 返回的通道被关闭。
type Subscription struct {
	bus     *Bus
	typ     reflect.Type
	out     chan interface{}
	dropped atomic.Int64
	once    sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan interface{} {
	return s.out
}

// Dropped 返回因缓冲区满被丢弃的事件数
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// deliver 非阻塞投递，调用方持有节点锁
func (s *Subscription) deliver(event interface{}) bool {
	select {
	case s.out <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Close 取消订阅，可重复调用
func (s *Subscription) Close() error {
	s.once.Do(func() {
		// 从节点移除后不会再有投递，此时关闭通道是安全的
		s.bus.removeSub(s)
		close(s.out)
	})
	return nil
}

// Emitter 单一事件类型的发射器
//
// 只接受创建时声明的类型，值与非空指针两种形式都可以，
// 订阅方总是收到值形式。
type Emitter struct {
	bus    *Bus
	node   *node
	typ    reflect.Type
	closed atomic.Bool
	once   sync.Once
}

// Emit 发射事件
func (e *Emitter) Emit(event interface{}) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	v, err := e.normalize(event)
	if err != nil {
		return err
	}
	e.node.emit(v)
	return nil
}

// normalize 把事件转换为声明类型的值
func (e *Emitter) normalize(event interface{}) (interface{}, error) {
	if event == nil {
		return nil, ErrInvalidEventType
	}
	rv := reflect.ValueOf(event)
	switch {
	case rv.Type() == e.typ:
		return event, nil
	case rv.Kind() == reflect.Ptr && rv.Type().Elem() == e.typ && !rv.IsNil():
		return rv.Elem().Interface(), nil
	}
	return nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidEventType, rv.Type(), e.typ)
}

// Close 关闭发射器，没有订阅者与发射器的节点随之删除
func (e *Emitter) Close() error {
	e.once.Do(func() {
		e.closed.Store(true)
		if e.node.nEmitters.Add(-1) == 0 {
			e.bus.tryDropNode(e.typ)
		}
	})
	return nil
}
