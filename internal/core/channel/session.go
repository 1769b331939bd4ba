package channel

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-chanmux/internal/core/metrics"
	"github.com/dep2p/go-chanmux/pkg/channelids"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// maxEarlyFrames 握手完成前最多暂存的入站帧数量
const maxEarlyFrames = 1024

// earlyFrame 握手完成前到达的入站帧
type earlyFrame struct {
	id      types.Identifier
	payload []byte
}

// Session 单个连接上的通道注册表与分发器
//
// 握手前本地注册/注销只修改 pending，握手时一次性批量声明；
// 握手后每次注册/注销立即发送一个控制帧。
// 处理器与生命周期事件都通过会话的 Executor 调用：SessionStarted 先于任何处理器，
// SessionEnded 在最后一个处理器之后，两者之间互不并发。
type Session struct {
	id        types.SessionID
	mgr       *Manager
	transport pkgif.Transport
	executor  pkgif.Executor
	codec     pkgif.ControlCodec
	limiter   *rate.Limiter

	mu       sync.Mutex
	handlers map[types.Identifier]pkgif.ChannelHandler
	order    []types.Identifier
	pending  []types.Identifier
	canSend  bool
	closed   bool

	// 握手前或回放期间到达的用户帧，握手后按到达顺序交付
	early     []earlyFrame
	replaying bool

	// 只在执行器上修改，保证 Started/Ended 成对
	startedFired bool
	endedFired   bool

	peer *PeerBook
}

var _ pkgif.PacketSender = (*Session)(nil)

func newSession(mgr *Manager, t pkgif.Transport, e pkgif.Executor) *Session {
	return &Session{
		id:        types.NewSessionID(),
		mgr:       mgr,
		transport: t,
		executor:  e,
		codec:     mgr.codec,
		limiter:   rate.NewLimiter(rate.Limit(mgr.cfg.UnhandledLogRate), mgr.cfg.UnhandledLogBurst),
		handlers:  make(map[types.Identifier]pkgif.ChannelHandler),
		peer:      NewPeerBook(),
	}
}

// ID 返回会话 ID
func (s *Session) ID() types.SessionID {
	return s.id
}

// ============================================================================
//                              本地注册
// ============================================================================

// RegisterChannel 注册通道处理器
//
// 出错时不修改任何状态。
func (s *Session) RegisterChannel(id types.Identifier, handler pkgif.ChannelHandler) error {
	if err := checkRegistration(id, handler); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrProtocolState
	}
	if _, exists := s.handlers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChannel, id)
	}

	s.handlers[id] = handler
	s.order = append(s.order, id)

	if s.canSend {
		s.announceLocked(channelids.Register, []types.Identifier{id}, metrics.SentRegister)
	} else {
		s.pending = append(s.pending, id)
	}
	return nil
}

// UnregisterChannel 注销通道处理器
//
// 握手前注销会同时从待声明列表中移除，注册后再注销等于没注册过。
func (s *Session) UnregisterChannel(id types.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrProtocolState
	}
	if _, exists := s.handlers[id]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}

	delete(s.handlers, id)
	s.order = removeID(s.order, id)

	if s.canSend {
		s.announceLocked(channelids.Unregister, []types.Identifier{id}, metrics.SentUnregister)
	} else {
		s.pending = removeID(s.pending, id)
	}
	return nil
}

// CompleteHandshake 完成注册握手
//
// 复制全局默认处理器（本地已注册的跳过），发送一个包含全部通道的批量声明帧，
// 然后允许即时发送，并在执行器上触发 SessionStarted。
// 握手前暂存的入站帧随后按到达顺序交付。每个会话只能调用一次。
func (s *Session) CompleteHandshake() error {
	s.mu.Lock()
	if s.closed || s.canSend {
		s.mu.Unlock()
		return ErrProtocolState
	}

	for _, entry := range s.mgr.defaults.Entries() {
		if _, exists := s.handlers[entry.ID]; exists {
			continue
		}
		s.handlers[entry.ID] = entry.Handler
		s.order = append(s.order, entry.ID)
		s.pending = append(s.pending, entry.ID)
	}

	batch := s.pending
	s.pending = nil
	if len(batch) > 0 {
		s.announceLocked(channelids.Register, batch, metrics.SentRegister)
	}
	s.canSend = true
	s.replaying = true
	s.mu.Unlock()

	logger.Debug("会话握手完成",
		"session", s.id.ShortString(),
		"channels", len(batch))

	s.serialize(s.fireStartedTask)
	s.replayEarly()
	return nil
}

// serialize 在会话执行器上运行 fn，执行器已关闭时在当前 goroutine 上运行
func (s *Session) serialize(fn func()) {
	if err := s.executor.Execute(fn); err != nil {
		fn()
	}
}

// fireStartedTask 在执行器上触发 SessionStarted，会话已结束时跳过
func (s *Session) fireStartedTask() {
	s.mu.Lock()
	if s.endedFired {
		s.mu.Unlock()
		return
	}
	s.startedFired = true
	s.mu.Unlock()

	s.mgr.fireStarted(types.EvtSessionStarted{
		Session:   s.id,
		Timestamp: time.Now(),
	})
}

// replayEarly 交付握手前暂存的帧
//
// 回放期间新到达的帧继续排在 early 之后，队列清空时才结束回放。
func (s *Session) replayEarly() {
	for {
		s.mu.Lock()
		if s.closed || len(s.early) == 0 {
			s.early = nil
			s.replaying = false
			s.mu.Unlock()
			return
		}
		frames := s.early
		s.early = nil
		s.mu.Unlock()

		for _, f := range frames {
			if _, err := s.deliver(f.id, f.payload); err != nil {
				logger.Debug("交付暂存帧失败",
					"session", s.id.ShortString(),
					"channel", f.id.String(),
					"error", err)
			}
		}
	}
}

// announceLocked 在控制通道上发送通道列表，调用方持有 s.mu
//
// 声明是尽力而为的，发送失败只记录日志。
func (s *Session) announceLocked(ctrl types.Identifier, ids []types.Identifier, kind string) {
	payload, err := s.codec.Encode(ids)
	if err != nil {
		logger.Warn("编码控制帧失败",
			"session", s.id.ShortString(),
			"control", ctrl.String(),
			"error", err)
		return
	}

	if err := s.transport.Send(ctrl, payload); err != nil {
		logger.Warn("发送控制帧失败",
			"session", s.id.ShortString(),
			"control", ctrl.String(),
			"channels", len(ids),
			"error", err)
		return
	}
	s.mgr.metrics.ObserveSent(kind, len(payload))
}

// ============================================================================
//                              入站分发
// ============================================================================

// Dispatch 分发一个入站帧
//
// 控制通道更新对端通道簿并报告已处理；已注册通道交给处理器；
// 其余通道报告未处理，不视为错误。握手完成前到达的用户帧先暂存，
// 报告已处理，握手后再按顺序交付。
func (s *Session) Dispatch(id types.Identifier, payload []byte) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrProtocolState
	}
	if channelids.IsReserved(id) {
		s.mu.Unlock()
		return s.dispatchControl(id, payload)
	}
	if !s.canSend || s.replaying {
		defer s.mu.Unlock()
		if len(s.early) >= maxEarlyFrames {
			return false, fmt.Errorf("%w: too many frames before handshake", ErrProtocolState)
		}
		s.early = append(s.early, earlyFrame{id: id, payload: payload})
		return true, nil
	}
	s.mu.Unlock()

	return s.deliver(id, payload)
}

// deliver 把用户帧提交到执行器，会话关闭后排队中的帧被丢弃
func (s *Session) deliver(id types.Identifier, payload []byte) (bool, error) {
	s.mu.Lock()
	handler, ok := s.handlers[id]
	s.mu.Unlock()

	if !ok {
		s.mgr.metrics.ObserveDispatch(metrics.ResultUnhandled, len(payload))
		if s.limiter.Allow() {
			logger.Debug("未处理的通道",
				"session", s.id.ShortString(),
				"channel", id.String(),
				"size", len(payload))
		}
		return false, nil
	}

	if err := s.executor.Execute(func() {
		if s.Closed() {
			logger.Debug("会话已关闭，丢弃排队的帧",
				"session", s.id.ShortString(),
				"channel", id.String())
			return
		}
		handler.Receive(s, payload)
	}); err != nil {
		return false, err
	}
	s.mgr.metrics.ObserveDispatch(metrics.ResultHandled, len(payload))
	return true, nil
}

// dispatchControl 处理注册/注销控制帧，只通知变化的部分
func (s *Session) dispatchControl(ctrl types.Identifier, payload []byte) (bool, error) {
	ids, err := s.codec.Decode(payload)
	if err != nil {
		s.mgr.metrics.ObserveDispatch(metrics.ResultRejected, len(payload))
		return false, fmt.Errorf("%w: %v", ErrInvalidControlFrame, err)
	}
	s.mgr.metrics.ObserveDispatch(metrics.ResultControl, len(payload))

	// 对端通道簿立即更新，通知与处理器一样在执行器上触发
	switch ctrl {
	case channelids.Register:
		if added := s.peer.Add(ids...); len(added) > 0 {
			evt := types.EvtChannelsRegistered{
				Session:   s.id,
				Channels:  added,
				Timestamp: time.Now(),
			}
			s.serialize(func() {
				if !s.ended() {
					s.mgr.fireRegistered(evt)
				}
			})
		}
	case channelids.Unregister:
		if removed := s.peer.Remove(ids...); len(removed) > 0 {
			evt := types.EvtChannelsUnregistered{
				Session:   s.id,
				Channels:  removed,
				Timestamp: time.Now(),
			}
			s.serialize(func() {
				if !s.ended() {
					s.mgr.fireUnregistered(evt)
				}
			})
		}
	}
	return true, nil
}

// ============================================================================
//                              出站与查询
// ============================================================================

// Send 在通道上发送负载
//
// 对端未声明的通道也可以发送。保留通道只能由会话自身使用。
func (s *Session) Send(id types.Identifier, payload []byte) error {
	if channelids.IsReserved(id) {
		return ErrReservedChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrProtocolState
	}
	if err := s.transport.Send(id, payload); err != nil {
		return err
	}
	s.mgr.metrics.ObserveSent(metrics.SentPayload, len(payload))
	return nil
}

// Channels 按注册顺序返回本地已注册的通道
func (s *Session) Channels() []types.Identifier {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]types.Identifier, len(s.order))
	copy(result, s.order)
	return result
}

// PeerChannels 返回对端声明支持的通道
func (s *Session) PeerChannels() []types.Identifier {
	return s.peer.Channels()
}

// PeerSupports 检查对端是否声明支持该通道
func (s *Session) PeerSupports(id types.Identifier) bool {
	return s.peer.Supports(id)
}

// HandshakeDone 是否已完成握手
func (s *Session) HandshakeDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSend
}

// Closed 是否已关闭
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭会话
//
// 立即拒绝后续调用，排队中尚未执行的处理器被跳过。SessionEnded 在执行器上
// 恰好触发一次，排在已经开始的处理器之后，随后丢弃全部注册状态。
// 使用异步执行器时 Close 不等待 SessionEnded，关闭执行器即可等待。
// 不发送注销帧，连接此时已经不可用。重复调用返回 nil。
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.canSend = false
	s.early = nil
	s.mu.Unlock()

	s.serialize(s.fireEndedTask)
	return nil
}

// fireEndedTask 在执行器上触发 SessionEnded 并释放状态
func (s *Session) fireEndedTask() {
	s.mu.Lock()
	s.endedFired = true
	handshaken := s.startedFired
	s.mu.Unlock()

	// 监听器执行期间仍可查询注册状态
	s.mgr.fireEnded(types.EvtSessionEnded{
		Session:    s.id,
		Handshaken: handshaken,
		Timestamp:  time.Now(),
	})

	s.mu.Lock()
	s.handlers = make(map[types.Identifier]pkgif.ChannelHandler)
	s.order = nil
	s.pending = nil
	s.mu.Unlock()
	s.peer.Clear()

	s.mgr.removeSession(s.id)

	logger.Debug("会话已关闭",
		"session", s.id.ShortString(),
		"handshaken", handshaken)
}

// ended SessionEnded 是否已触发
func (s *Session) ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedFired
}
