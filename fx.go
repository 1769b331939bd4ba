package chanmux

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-chanmux/config"
	"github.com/dep2p/go-chanmux/internal/core/channel"
	"github.com/dep2p/go-chanmux/internal/core/eventbus"
	"github.com/dep2p/go-chanmux/internal/core/metrics"
	"github.com/dep2p/go-chanmux/internal/core/storage"
	"github.com/dep2p/go-chanmux/internal/core/tagstore"
	"github.com/dep2p/go-chanmux/internal/core/transport/stream"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. EventBus, Metrics
//  2. Storage（仅在持久化标签时加载）
//  3. Channel, TagStore, Stream
func buildFxApp(cfg *config.Config, node *Node, extra []fx.Option) *fx.App {
	modules := []fx.Option{
		// 配置注入
		fx.Supply(cfg),

		// 基础组件
		eventbus.Module(),
		metrics.Module(),
	}

	// 存储是可选依赖，tagstore 在没有 DB 时只在内存中保存快照
	if cfg.Tag.Persist {
		modules = append(modules, storage.Module())
	}

	modules = append(modules,
		channel.Module(),
		tagstore.Module(),
		stream.Module(),
	)

	modules = append(modules, extra...)

	modules = append(modules,
		fx.Invoke(injectNodeComponents(node)),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...)
}

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Channels  *channel.Manager
	Tags      *tagstore.ChannelStore
	EventBus  pkgif.EventBus
	Registry  *prometheus.Registry
	StreamCfg stream.Config
}

// injectNodeComponents 创建 Node 组件注入函数
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.channels = params.Channels
		node.tags = params.Tags
		node.eventBus = params.EventBus
		node.registry = params.Registry
		node.streamCfg = params.StreamCfg
	}
}
