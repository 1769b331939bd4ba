package chanmux

import (
	"context"
	"errors"
	"io"

	"github.com/dep2p/go-chanmux/internal/core/channel"
	"github.com/dep2p/go-chanmux/internal/core/executor"
	"github.com/dep2p/go-chanmux/internal/core/transport/stream"
)

// SessionHook 会话握手前的回调，通常用来注册会话私有的处理器
//
// 返回错误时连接被关闭。
type SessionHook func(s *channel.Session) error

// connRun 一个正在服务的连接
type connRun struct {
	session *channel.Session
	conn    *stream.Conn
	exec    *executor.Serial
	done    chan error
	stop    func() bool
	cancel  context.CancelFunc
}

// wait 等待连接结束并释放执行器
func (r *connRun) wait() error {
	err := <-r.done
	r.stop()
	r.cancel()
	_ = r.exec.Close()
	return err
}

// begin 创建会话并开始服务
//
// 顺序：执行 hooks，启动入站循环，完成握手。入站循环先于握手启动，
// 双方同时握手时不会互相阻塞。成功时 n.conns 计数加一，由调用方在 wait 之后减一。
func (n *Node) begin(ctx context.Context, conn *stream.Conn, hooks []SessionHook) (*connRun, error) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		_ = conn.Close()
		return nil, ErrNodeClosed
	}
	if !n.started {
		n.mu.Unlock()
		_ = conn.Close()
		return nil, ErrNotStarted
	}
	n.conns.Add(1)
	runCtx := n.runCtx
	n.mu.Unlock()

	exec := executor.NewSerial("session")
	s, err := n.channels.NewSession(conn, exec)
	if err != nil {
		_ = conn.Close()
		_ = exec.Close()
		n.conns.Done()
		return nil, err
	}

	for _, hook := range hooks {
		if err := hook(s); err != nil {
			_ = s.Close()
			_ = conn.Close()
			_ = exec.Close()
			n.conns.Done()
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &connRun{
		session: s,
		conn:    conn,
		exec:    exec,
		done:    make(chan error, 1),
		stop:    context.AfterFunc(runCtx, cancel),
		cancel:  cancel,
	}
	go func() { r.done <- stream.Serve(ctx, conn, s) }()

	if err := s.CompleteHandshake(); err != nil {
		// 入站循环可能已经因为连接断开关闭了会话
		logger.Debug("会话握手失败", "session", s.ID().ShortString(), "error", err)
	}

	logger.Debug("连接已接入",
		"session", s.ID().ShortString(),
		"remote", conn.RemoteAddr(),
		"channels", len(s.Channels()))
	return r, nil
}

// ServeConn 在字节流上运行一个会话，直到连接关闭
//
// 会话完成握手时会复制 Channels().Defaults() 中的处理器，
// hooks 在握手前执行。对端正常断开时返回 nil，ctx 取消或节点停止时返回 context.Canceled。
func (n *Node) ServeConn(ctx context.Context, rwc io.ReadWriteCloser, hooks ...SessionHook) error {
	r, err := n.begin(ctx, stream.NewConn(rwc, n.streamCfg), hooks)
	if err != nil {
		return err
	}
	defer n.conns.Done()
	return r.wait()
}

// Connect 拨号到 addr 并在后台服务该连接
//
// 返回已经完成握手的会话。ctx 只约束拨号，连接持续到对端断开或节点停止。
func (n *Node) Connect(ctx context.Context, addr string, hooks ...SessionHook) (*channel.Session, error) {
	conn, err := stream.Dial(ctx, addr, n.streamCfg)
	if err != nil {
		return nil, err
	}

	r, err := n.begin(context.WithoutCancel(ctx), conn, hooks)
	if err != nil {
		return nil, err
	}

	go func() {
		defer n.conns.Done()
		if err := r.wait(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("出站连接结束", "addr", addr, "error", err)
		}
	}()
	return r.session, nil
}

// Serve 在配置的 TCP 地址上接受连接，直到 ctx 取消或节点停止
func (n *Node) Serve(ctx context.Context, hooks ...SessionHook) error {
	l, err := stream.Listen(ctx, n.streamCfg)
	if err != nil {
		return err
	}
	return n.ServeListener(ctx, l, hooks...)
}

// ServeListener 在给定监听器上接受连接，返回前关闭监听器
func (n *Node) ServeListener(ctx context.Context, l *stream.Listener, hooks ...SessionHook) error {
	n.mu.Lock()
	if !n.started {
		n.mu.Unlock()
		_ = l.Close()
		return ErrNotStarted
	}
	runCtx := n.runCtx
	n.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(runCtx, cancel)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, stream.ErrListenerClosed) {
				return ctx.Err()
			}
			logger.Warn("接受连接失败", "error", err)
			_ = l.Close()
			return err
		}

		go func() {
			r, err := n.begin(ctx, conn, hooks)
			if err != nil {
				logger.Debug("拒绝连接", "remote", conn.RemoteAddr(), "error", err)
				return
			}
			defer n.conns.Done()
			if err := r.wait(); err != nil && !errors.Is(err, context.Canceled) {
				logger.Debug("入站连接结束", "remote", conn.RemoteAddr(), "error", err)
			}
		}()
	}
}
