package eventbus

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
)

// Result 同时以具体类型和接口提供总线
type Result struct {
	fx.Out

	Bus      *Bus
	EventBus pkgif.EventBus
}

// Module 返回 Fx 模块
//
// 停止时关闭总线上所有订阅，Watch 启动的 goroutine 随之退出。
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus() Result {
	b := NewBus()
	return Result{Bus: b, EventBus: b}
}

type lifecycleInput struct {
	fx.In

	LC  fx.Lifecycle
	Bus *Bus
}

func registerLifecycle(in lifecycleInput) {
	in.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Debug("关闭事件总线", "subscriptions", in.Bus.Subscriptions())
			return in.Bus.Close()
		},
	})
}
