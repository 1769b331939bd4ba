package eventbus

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/multierr"
)

// Listener 同步事件监听器
type Listener[E any] func(evt E) error

// ListenerFailureFunc 监听器失败回调，用于日志与指标
type ListenerFailureFunc func(event string, index int, err error)

// Listeners 有序监听器列表
//
// 零值可直接使用。Invoke 按注册顺序调用全部监听器，
// 失败的监听器被隔离并汇总到返回的错误中，不会中断分发。
type Listeners[E any] struct {
	mu        sync.RWMutex
	listeners []Listener[E]
	onFailure ListenerFailureFunc
}

// Register 追加监听器
func (l *Listeners[E]) Register(fn Listener[E]) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// OnFailure 设置失败回调
func (l *Listeners[E]) OnFailure(fn ListenerFailureFunc) {
	l.mu.Lock()
	l.onFailure = fn
	l.mu.Unlock()
}

// Len 返回监听器数量
func (l *Listeners[E]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.listeners)
}

// Invoke 按注册顺序调用全部监听器
//
// 返回值汇总了所有失败（错误返回或 panic），调用方只应记录，不应继续上抛。
func (l *Listeners[E]) Invoke(evt E) error {
	l.mu.RLock()
	snapshot := l.listeners
	onFailure := l.onFailure
	l.mu.RUnlock()

	name := eventName(evt)
	var errs error
	for i, fn := range snapshot {
		if err := callListener(fn, evt); err != nil {
			logger.Warn("事件监听器执行失败",
				"event", name,
				"index", i,
				"error", err)
			if onFailure != nil {
				onFailure(name, i, err)
			}
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// callListener 调用单个监听器，panic 转换为错误
func callListener[E any](fn Listener[E], evt E) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrListenerPanic, rec)
		}
	}()
	return fn(evt)
}

func eventName(evt any) string {
	t := reflect.TypeOf(evt)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
