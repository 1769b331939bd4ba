package eventbus

import (
	"context"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
)

// Watch 订阅 E 类型的事件，并在独立 goroutine 中逐个交给 fn
//
// ctx 结束、订阅被关闭或总线关闭时停止。返回的订阅可用于提前取消。
func Watch[E any](ctx context.Context, bus pkgif.EventBus, fn func(E), opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	sub, err := bus.Subscribe(new(E), opts...)
	if err != nil {
		return nil, err
	}

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-sub.Out():
				if !ok {
					return
				}
				if evt, ok := e.(E); ok {
					fn(evt)
				}
			}
		}
	}()
	return sub, nil
}
