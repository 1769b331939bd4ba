package stream

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
)

// ============================================================================
//                              Listener 实现
// ============================================================================

// Listener TCP 帧连接监听器
type Listener struct {
	listener *net.TCPListener
	cfg      Config
	closed   atomic.Bool
}

// Listen 在 cfg.ListenAddr 上监听
func Listen(ctx context.Context, cfg Config) (*Listener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("监听失败: %w", err)
	}

	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, fmt.Errorf("不是 TCP 监听器")
	}

	logger.Info("开始监听", "addr", tcpListener.Addr().String())
	return &Listener{listener: tcpListener, cfg: cfg}, nil
}

// Accept 接受连接
func (l *Listener) Accept() (*Conn, error) {
	conn, err := l.listener.AcceptTCP()
	if err != nil {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}
		return nil, err
	}

	_ = conn.SetNoDelay(true)
	_ = conn.SetKeepAlive(true)

	return NewConn(conn, l.cfg), nil
}

// Addr 返回实际监听地址（端口可能是 0）
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close 关闭监听器
func (l *Listener) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		return l.listener.Close()
	}
	return nil
}

// ============================================================================
//                              拨号
// ============================================================================

// Dial 拨号并返回帧连接
func Dial(ctx context.Context, addr string, cfg Config) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("拨号失败: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return NewConn(conn, cfg), nil
}
