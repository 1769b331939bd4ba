package channel

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
	"github.com/dep2p/go-chanmux/internal/core/metrics"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
)

// Params 通道模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("channel",
		fx.Provide(
			ProvideConfig,
			ProvideManager,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideConfig 从统一配置提供通道配置
func ProvideConfig(p Params) Config {
	return ConfigFromUnified(p.UnifiedCfg)
}

type managerInput struct {
	fx.In

	Config   Config
	EventBus pkgif.EventBus   `optional:"true"`
	Metrics  *metrics.Metrics `optional:"true"`
}

// ProvideManager 提供通道管理器
func ProvideManager(input managerInput) (*Manager, error) {
	if err := input.Config.Validate(); err != nil {
		return nil, err
	}
	return NewManager(input.Config, input.EventBus, input.Metrics)
}

type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Manager *Manager
}

// registerLifecycle 停止时关闭全部会话
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Manager.Close()
		},
	})
}
