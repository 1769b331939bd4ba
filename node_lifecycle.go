package chanmux

import (
	"context"
	"fmt"
	"time"
)

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期常量
// ════════════════════════════════════════════════════════════════════════════

const (
	// initializeTimeout 初始化超时（Fx App Start）
	initializeTimeout = 30 * time.Second

	// shutdownTimeout Close 使用的停止超时
	shutdownTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期管理
// ════════════════════════════════════════════════════════════════════════════

// Start 启动节点
//
// 启动所有内部组件：
//   - 存储（持久化标签时）
//   - 标签存储：恢复持久化的定义，加载数据包，按需启动热加载
//   - 指标服务（配置了监听地址时）
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	n.state = StateStarting
	logger.Info("正在启动节点")

	initCtx, initCancel := context.WithTimeout(ctx, initializeTimeout)
	defer initCancel()

	if err := n.app.Start(initCtx); err != nil {
		n.state = StateIdle
		logger.Error("节点启动失败", "error", err)
		return fmt.Errorf("initialize failed: %w", err)
	}

	n.runCtx, n.runCancel = context.WithCancel(context.Background())
	n.state = StateRunning
	n.started = true

	snap := n.tags.Snapshot()
	logger.Info("节点启动成功",
		"codec", n.channels.Codec().Name(),
		"tags", snap.Len(),
		"generation", snap.Generation())
	return nil
}

// Stop 停止节点
//
// 先断开全部连接并等待其会话结束，再按反向启动顺序停止组件。
// 停止后节点不能再次启动。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}
	return n.stopLocked(ctx)
}

// stopLocked 调用方持有 n.mu
func (n *Node) stopLocked(ctx context.Context) error {
	n.state = StateStopping
	logger.Info("正在停止节点")

	n.runCancel()
	n.conns.Wait()

	err := n.app.Stop(ctx)
	n.state = StateStopped
	n.started = false
	n.closed = true
	n.closeLogFile()

	if err != nil {
		logger.Error("停止节点失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	logger.Info("节点已停止")
	return nil
}

// Close 关闭节点并释放所有资源，可重复调用
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	if !n.started {
		n.closed = true
		n.state = StateStopped
		n.closeLogFile()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return n.stopLocked(ctx)
}
