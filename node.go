package chanmux

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
	"github.com/dep2p/go-chanmux/internal/core/channel"
	"github.com/dep2p/go-chanmux/internal/core/tag"
	"github.com/dep2p/go-chanmux/internal/core/tagstore"
	"github.com/dep2p/go-chanmux/internal/core/transport/stream"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
	"github.com/dep2p/go-chanmux/pkg/types"
)

var logger = log.Logger("chanmux")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle NodeState = iota

	// StateStarting 启动中（Fx App 启动中）
	StateStarting

	// StateRunning 运行中
	StateRunning

	// StateStopping 停止中
	StateStopping

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              Node
// ════════════════════════════════════════════════════════════════════════════

// Node chanmux 节点
//
// 持有通道管理器与标签存储，为每个连接创建会话。
type Node struct {
	cfg *config.Config
	app *fx.App

	// 由 Fx 注入
	channels  *channel.Manager
	tags      *tagstore.ChannelStore
	eventBus  pkgif.EventBus
	registry  *prometheus.Registry
	streamCfg stream.Config

	logFile *os.File

	mu      sync.Mutex
	state   NodeState
	started bool
	closed  bool

	// 运行期间的连接
	runCtx    context.Context
	runCancel context.CancelFunc
	conns     sync.WaitGroup
}

// New 创建新节点
//
// 创建节点但不启动，需要调用 Start() 启动。
//
// 示例：
//
//	node, err := chanmux.New(
//	    chanmux.WithConfigFile("chanmux.json"),
//	    chanmux.WithPacks("./base", "./override"),
//	)
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}

	node := &Node{cfg: cfg}

	// 日志必须在装配组件之前配置
	if err := node.configureLogging(o); err != nil {
		return nil, err
	}

	node.app = buildFxApp(cfg, node, o.fxOptions)
	if err := node.app.Err(); err != nil {
		node.closeLogFile()
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return node, nil
}

// Start 快捷启动函数，等价于 New() + Start()
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}
	return node, nil
}

// configureLogging 按日志配置重建默认 logger
func (n *Node) configureLogging(o *options) error {
	w := o.logOutput
	if w == nil && n.cfg.Log.File != "" {
		f, err := os.OpenFile(n.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		n.logFile = f
		w = f
	}
	if err := log.Configure(w, n.cfg.Log.Level, n.cfg.Log.Format); err != nil {
		n.closeLogFile()
		return err
	}
	return nil
}

func (n *Node) closeLogFile() {
	if n.logFile != nil {
		_ = n.logFile.Close()
		n.logFile = nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              访问器
// ════════════════════════════════════════════════════════════════════════════

// Config 返回节点配置
func (n *Node) Config() *config.Config {
	return n.cfg
}

// Channels 返回通道管理器
//
// 在 Defaults() 上注册的处理器会在每个会话握手时自动复制。
func (n *Node) Channels() *channel.Manager {
	return n.channels
}

// Events 返回会话生命周期监听器
func (n *Node) Events() *channel.Events {
	return n.channels.Events()
}

// Tags 返回通道标签存储
func (n *Node) Tags() *tagstore.ChannelStore {
	return n.tags
}

// Tag 返回标签的派生视图
func (n *Node) Tag(id types.Identifier) *tag.Delegate[types.Identifier] {
	return n.tags.Tag(id)
}

// EventBus 返回事件总线
func (n *Node) EventBus() pkgif.EventBus {
	return n.eventBus
}

// MetricsRegistry 返回 Prometheus 注册表
func (n *Node) MetricsRegistry() *prometheus.Registry {
	return n.registry
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// IsRunning 检查节点是否运行中
func (n *Node) IsRunning() bool {
	return n.State() == StateRunning
}
