package channel

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-chanmux/internal/core/executor"
	"github.com/dep2p/go-chanmux/internal/core/metrics"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
	"github.com/dep2p/go-chanmux/pkg/types"
)

var logger = log.Logger("core/channel")

// Manager 通道管理器
//
// 持有进程级的默认处理器注册表、生命周期监听器与指标，
// 为每个连接创建一个 Session。
type Manager struct {
	cfg      Config
	codec    pkgif.ControlCodec
	defaults *Registry
	events   Events
	emitters *emitters
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	sessions map[types.SessionID]*Session
	closed   bool
}

// NewManager 创建通道管理器
//
// bus 与 m 均可为 nil。
func NewManager(cfg Config, bus pkgif.EventBus, m *metrics.Metrics) (*Manager, error) {
	codec, err := CodecByName(cfg.ControlCodec)
	if err != nil {
		return nil, err
	}
	if cfg.UnhandledLogBurst <= 0 {
		cfg.UnhandledLogBurst = 1
	}

	em, err := newEmitters(bus)
	if err != nil {
		return nil, err
	}

	mgr := &Manager{
		cfg:      cfg,
		codec:    codec,
		defaults: NewRegistry(),
		emitters: em,
		metrics:  m,
		sessions: make(map[types.SessionID]*Session),
	}
	mgr.events.bindFailureMetrics(m)
	return mgr, nil
}

// Defaults 返回全局默认处理器注册表
func (m *Manager) Defaults() *Registry {
	return m.defaults
}

// Events 返回生命周期监听器
func (m *Manager) Events() *Events {
	return &m.events
}

// Codec 返回控制帧编解码器
func (m *Manager) Codec() pkgif.ControlCodec {
	return m.codec
}

// NewSession 为一个连接创建会话
//
// exec 为 nil 时在调用方 goroutine 上直接执行处理器。
func (m *Manager) NewSession(t pkgif.Transport, exec pkgif.Executor) (*Session, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	if exec == nil {
		exec = executor.Inline{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	s := newSession(m, t, exec)
	m.sessions[s.id] = s
	m.metrics.SessionOpened()

	logger.Debug("创建会话", "session", s.id.ShortString())
	return s, nil
}

// Session 按 ID 查找活跃会话
func (m *Manager) Session(id types.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Sessions 返回全部活跃会话
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// removeSession 会话关闭时调用
func (m *Manager) removeSession(id types.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.metrics.SessionClosed()
	}
}

// Close 关闭全部会话并释放事件发射器
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	var errs error
	for _, s := range sessions {
		errs = multierr.Append(errs, s.Close())
	}
	m.emitters.close()
	return errs
}
