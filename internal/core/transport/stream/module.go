package stream

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
)

// Params 流传输依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("stream",
		fx.Provide(ProvideConfig),
	)
}

// ProvideConfig 从统一配置提供流传输配置
func ProvideConfig(p Params) (Config, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
