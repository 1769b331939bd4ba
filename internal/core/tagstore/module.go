package tagstore

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
	"github.com/dep2p/go-chanmux/internal/core/metrics"
	"github.com/dep2p/go-chanmux/internal/core/storage"
	"github.com/dep2p/go-chanmux/internal/core/storage/kv"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// ChannelStore 以通道 ID 为元素的标签存储
type ChannelStore = Store[types.Identifier]

// Params 标签存储模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config   `optional:"true"`
	DB         *storage.DB      `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Module 返回 Fx 模块
//
// 生命周期:
//   - OnStart: 恢复持久化的标签，配置了数据包时重新加载，按需启动监视
//   - OnStop: 停止监视并关闭存储
func Module() fx.Option {
	return fx.Module("tagstore",
		fx.Provide(ProvideStore),
		fx.Invoke(registerLifecycle),
	)
}

// KeyPrefix 返回某种元素在存储中的键前缀
func KeyPrefix(kind string) []byte {
	return []byte("t/" + kind + "/")
}

// ProvideStore 提供通道标签存储
func ProvideStore(p Params) (*ChannelStore, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)

	opts := []Option{WithMetrics(p.Metrics)}
	if p.DB != nil {
		opts = append(opts, WithKV(kv.New(p.DB, KeyPrefix(cfg.Kind))))
	}
	return New(cfg, IdentifierResolver(), opts...)
}

type lifecycleInput struct {
	fx.In

	LC    fx.Lifecycle
	Store *ChannelStore
}

func registerLifecycle(input lifecycleInput) {
	s := input.Store
	var w *Watcher

	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := s.LoadPersisted(); err != nil {
				logger.Warn("恢复持久化标签失败", "error", err)
			}

			cfg := s.Config()
			if len(cfg.Packs) == 0 {
				return nil
			}
			if err := s.Reload(ctx); err != nil {
				return err
			}

			if !cfg.Watch {
				return nil
			}
			var err error
			if w, err = NewWatcher(cfg.Packs, cfg.WatchDebounce, s.Reload); err != nil {
				return err
			}
			return w.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			if w != nil {
				_ = w.Close()
			}
			return s.Close()
		},
	})
}
