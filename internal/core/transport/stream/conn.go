package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
	"github.com/dep2p/go-chanmux/pkg/types"
)

var logger = log.Logger("core/transport/stream")

// 确保实现了接口
var _ pkgif.Transport = (*Conn)(nil)

// writeDeadliner 支持写超时的连接
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Conn 帧连接
//
// 包装一条有序字节流，实现 pkgif.Transport。
type Conn struct {
	rwc io.ReadWriteCloser
	r   *bufio.Reader
	cfg Config

	wmu  sync.Mutex
	wbuf []byte

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewConn 在字节流上创建帧连接
//
// cfg 无效时回退到默认配置。
func NewConn(rwc io.ReadWriteCloser, cfg Config) *Conn {
	if err := cfg.Validate(); err != nil {
		logger.Warn("流传输配置无效，使用默认值", "error", err)
		cfg = DefaultConfig()
	}
	return &Conn{
		rwc: rwc,
		r:   bufio.NewReader(rwc),
		cfg: cfg,
	}
}

// Send 写出一个帧
//
// 可并发调用，每个帧一次性写出。
func (c *Conn) Send(id types.Identifier, payload []byte) error {
	if c.closed.Load() {
		return ErrConnClosed
	}

	text := id.String()
	if len(text)+len(payload) > c.cfg.MaxFrameSize {
		return fmt.Errorf("%w: %d bytes on %s", ErrFrameTooLarge, len(text)+len(payload), text)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	c.wbuf = appendFrame(c.wbuf[:0], text, payload)

	if d, ok := c.rwc.(writeDeadliner); ok && c.cfg.WriteTimeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err == nil {
			defer func() { _ = d.SetWriteDeadline(time.Time{}) }()
		}
	}

	if _, err := c.rwc.Write(c.wbuf); err != nil {
		if c.closed.Load() {
			return ErrConnClosed
		}
		return err
	}

	// 避免偶发的大帧长期占用缓冲
	if cap(c.wbuf) > 64<<10 {
		c.wbuf = nil
	}
	return nil
}

// ReadFrame 读取一个帧
//
// 对端在帧边界关闭时返回 io.EOF。不能并发调用。
func (c *Conn) ReadFrame() (Frame, error) {
	f, err := readFrame(c.r, c.cfg.MaxFrameSize)
	if err != nil && c.closed.Load() && isClosedErr(err) {
		return Frame{}, ErrConnClosed
	}
	return f, err
}

// Close 关闭底层字节流，可重复调用
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.rwc.Close()
	})
	return c.closeErr
}

// IsClosed 检查是否已关闭
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Config 返回连接配置
func (c *Conn) Config() Config {
	return c.cfg
}

// RemoteAddr 返回远端地址，非网络连接返回空串
func (c *Conn) RemoteAddr() string {
	if nc, ok := c.rwc.(net.Conn); ok && nc.RemoteAddr() != nil {
		return nc.RemoteAddr().String()
	}
	return ""
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
