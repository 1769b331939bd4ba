package channel

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chanmux/internal/core/executor"
	"github.com/dep2p/go-chanmux/pkg/channelids"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

var (
	modA = types.MustParseIdentifier("mod:a")
	modB = types.MustParseIdentifier("mod:b")
	modC = types.MustParseIdentifier("mod:c")
)

// TestSession_Scenario 完整的注册、握手、注销、分发流程
func TestSession_Scenario(t *testing.T) {
	s, rec := newTestSession(t)
	var got received

	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.RegisterChannel(modB, got.handler()))
	assert.Empty(t, rec.Frames(), "握手前不应发送任何帧")

	require.NoError(t, s.CompleteHandshake())
	frames := rec.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, channelids.Register, frames[0].id)
	assert.Equal(t, []types.Identifier{modA, modB}, decodeFrame(t, frames[0]))

	require.NoError(t, s.UnregisterChannel(modA))
	frames = rec.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, channelids.Unregister, frames[1].id)
	assert.Equal(t, []types.Identifier{modA}, decodeFrame(t, frames[1]))

	payload := []byte{0x00, 0x01, 0xfe, 'x'}
	handled, err := s.Dispatch(modB, payload)
	require.NoError(t, err)
	assert.True(t, handled)

	require.Len(t, got.Payloads(), 1)
	assert.Equal(t, payload, got.Payloads()[0])
}

// TestSession_PreHandshakeBatch 握手前的注册/注销合并为一个批量帧
func TestSession_PreHandshakeBatch(t *testing.T) {
	s, rec := newTestSession(t)

	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.RegisterChannel(modB, noopHandler()))
	require.NoError(t, s.UnregisterChannel(modA))
	require.NoError(t, s.RegisterChannel(modC, noopHandler()))
	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.UnregisterChannel(modB))

	assert.Empty(t, rec.Frames())
	require.NoError(t, s.CompleteHandshake())

	frames := rec.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, []types.Identifier{modC, modA}, decodeFrame(t, frames[0]))
}

// TestSession_RegisterThenUnregisterCancels 握手前注册后注销的通道不出现在声明中
func TestSession_RegisterThenUnregisterCancels(t *testing.T) {
	s, rec := newTestSession(t)

	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.UnregisterChannel(modA))
	require.NoError(t, s.CompleteHandshake())

	// 集合为空时不发送声明帧
	assert.Empty(t, rec.Frames())
	assert.True(t, s.HandshakeDone())
}

// TestSession_PostHandshakeIndividualFrames 握手后每次调用一个帧
func TestSession_PostHandshakeIndividualFrames(t *testing.T) {
	s, rec := newTestSession(t)
	require.NoError(t, s.CompleteHandshake())

	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.RegisterChannel(modB, noopHandler()))
	require.NoError(t, s.UnregisterChannel(modA))

	frames := rec.Frames()
	require.Len(t, frames, 3)

	assert.Equal(t, channelids.Register, frames[0].id)
	assert.Equal(t, []types.Identifier{modA}, decodeFrame(t, frames[0]))
	assert.Equal(t, channelids.Register, frames[1].id)
	assert.Equal(t, []types.Identifier{modB}, decodeFrame(t, frames[1]))
	assert.Equal(t, channelids.Unregister, frames[2].id)
	assert.Equal(t, []types.Identifier{modA}, decodeFrame(t, frames[2]))
}

// TestSession_RegisterErrors 注册失败不修改状态
func TestSession_RegisterErrors(t *testing.T) {
	s, rec := newTestSession(t)

	require.NoError(t, s.RegisterChannel(modA, noopHandler()))

	err := s.RegisterChannel(modA, noopHandler())
	assert.ErrorIs(t, err, ErrDuplicateChannel)

	for _, id := range channelids.Reserved() {
		assert.ErrorIs(t, s.RegisterChannel(id, noopHandler()), ErrReservedChannel)
	}

	assert.ErrorIs(t, s.RegisterChannel(modB, nil), ErrNilHandler)
	assert.ErrorIs(t, s.RegisterChannel(types.Identifier{Namespace: "Bad NS", Path: "x"}, noopHandler()),
		types.ErrInvalidIdentifier)

	assert.Equal(t, []types.Identifier{modA}, s.Channels())

	require.NoError(t, s.CompleteHandshake())
	frames := rec.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, []types.Identifier{modA}, decodeFrame(t, frames[0]))
}

// TestSession_UnregisterUnknown 注销未注册通道返回确定的错误
func TestSession_UnregisterUnknown(t *testing.T) {
	s, rec := newTestSession(t)

	assert.ErrorIs(t, s.UnregisterChannel(modA), ErrUnknownChannel)

	require.NoError(t, s.CompleteHandshake())
	assert.ErrorIs(t, s.UnregisterChannel(modA), ErrUnknownChannel)
	assert.Empty(t, rec.Frames())
}

// TestSession_HandshakeTwice 重复握手违反协议状态
func TestSession_HandshakeTwice(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.CompleteHandshake())
	assert.ErrorIs(t, s.CompleteHandshake(), ErrProtocolState)
}

// TestSession_DefaultHandlers 握手时复制全局默认处理器
func TestSession_DefaultHandlers(t *testing.T) {
	mgr := newTestManager(t)
	var fromDefault, fromLocal received

	require.NoError(t, mgr.Defaults().Register(modA, fromDefault.handler()))
	require.NoError(t, mgr.Defaults().Register(modB, fromDefault.handler()))

	rec := &recorder{}
	s, err := mgr.NewSession(rec, nil)
	require.NoError(t, err)

	// 本地已注册的通道优先于默认处理器
	require.NoError(t, s.RegisterChannel(modB, fromLocal.handler()))
	require.NoError(t, s.CompleteHandshake())

	frames := rec.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, []types.Identifier{modB, modA}, decodeFrame(t, frames[0]))

	_, err = s.Dispatch(modA, []byte("a"))
	require.NoError(t, err)
	_, err = s.Dispatch(modB, []byte("b"))
	require.NoError(t, err)

	assert.Equal(t, [][]byte{[]byte("a")}, fromDefault.Payloads())
	assert.Equal(t, [][]byte{[]byte("b")}, fromLocal.Payloads())
}

// TestSession_DispatchUnhandled 未注册通道报告未处理
func TestSession_DispatchUnhandled(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.CompleteHandshake())

	for i := 0; i < 20; i++ {
		handled, err := s.Dispatch(modC, []byte("ignored"))
		require.NoError(t, err)
		assert.False(t, handled)
	}
}

// TestSession_DispatchControl 控制帧只更新对端通道簿
func TestSession_DispatchControl(t *testing.T) {
	mgr := newTestManager(t)
	var userCalls int
	var registered, unregistered [][]types.Identifier

	mgr.Events().ChannelsRegistered.Register(func(evt types.EvtChannelsRegistered) error {
		registered = append(registered, evt.Channels)
		return nil
	})
	mgr.Events().ChannelsUnregistered.Register(func(evt types.EvtChannelsUnregistered) error {
		unregistered = append(unregistered, evt.Channels)
		return nil
	})

	s, err := mgr.NewSession(&recorder{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.RegisterChannel(modA, pkgif.ChannelHandlerFunc(func(pkgif.PacketSender, []byte) {
		userCalls++
	})))
	require.NoError(t, s.CompleteHandshake())

	payload, err := NulCodec{}.Encode([]types.Identifier{modA, modB})
	require.NoError(t, err)
	handled, err := s.Dispatch(channelids.Register, payload)
	require.NoError(t, err)
	assert.True(t, handled)

	// 重复声明不再通知
	handled, err = s.Dispatch(channelids.Register, payload)
	require.NoError(t, err)
	assert.True(t, handled)

	assert.True(t, s.PeerSupports(modA))
	assert.True(t, s.PeerSupports(modB))
	assert.False(t, s.PeerSupports(modC))
	assert.Equal(t, []types.Identifier{modA, modB}, s.PeerChannels())

	payload, err = NulCodec{}.Encode([]types.Identifier{modB, modC})
	require.NoError(t, err)
	handled, err = s.Dispatch(channelids.Unregister, payload)
	require.NoError(t, err)
	assert.True(t, handled)

	assert.Equal(t, [][]types.Identifier{{modA, modB}}, registered)
	assert.Equal(t, [][]types.Identifier{{modB}}, unregistered)
	assert.Equal(t, []types.Identifier{modA}, s.PeerChannels())

	// 控制帧从不调用用户处理器
	assert.Zero(t, userCalls)
}

// TestSession_DispatchInvalidControl 无法解码的控制帧
func TestSession_DispatchInvalidControl(t *testing.T) {
	s, _ := newTestSession(t)

	handled, err := s.Dispatch(channelids.Register, []byte("NOT A VALID:ID"))
	assert.False(t, handled)
	assert.ErrorIs(t, err, ErrInvalidControlFrame)
	assert.Empty(t, s.PeerChannels())
}

// TestSession_DispatchExecutorClosed 执行器拒绝任务时返回错误
func TestSession_DispatchExecutorClosed(t *testing.T) {
	exec := executor.NewSerial("test")
	require.NoError(t, exec.Close())

	s, err := newTestManager(t).NewSession(&recorder{}, exec)
	require.NoError(t, err)
	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.CompleteHandshake())

	handled, err := s.Dispatch(modA, []byte("x"))
	assert.False(t, handled)
	assert.ErrorIs(t, err, executor.ErrClosed)
}

// TestSession_SerialExecutor 串行执行器上的处理器按顺序执行
func TestSession_SerialExecutor(t *testing.T) {
	exec := executor.NewSerial("test")
	s, err := newTestManager(t).NewSession(&recorder{}, exec)
	require.NoError(t, err)

	var got received
	require.NoError(t, s.RegisterChannel(modA, got.handler()))
	require.NoError(t, s.CompleteHandshake())

	for i := 0; i < 50; i++ {
		handled, err := s.Dispatch(modA, []byte{byte(i)})
		require.NoError(t, err)
		require.True(t, handled)
	}
	require.NoError(t, exec.Close())

	payloads := got.Payloads()
	require.Len(t, payloads, 50)
	for i, p := range payloads {
		assert.Equal(t, []byte{byte(i)}, p)
	}
}

// TestSession_Close 关闭恰好触发一次 SessionEnded 且不发送帧
func TestSession_Close(t *testing.T) {
	mgr := newTestManager(t)
	var ended []types.EvtSessionEnded
	var channelsAtEnd []types.Identifier

	rec := &recorder{}
	s, err := mgr.NewSession(rec, nil)
	require.NoError(t, err)

	mgr.Events().SessionEnded.Register(func(evt types.EvtSessionEnded) error {
		ended = append(ended, evt)
		channelsAtEnd = s.Channels()
		return nil
	})

	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.CompleteHandshake())
	sentBefore := len(rec.Frames())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	require.Len(t, ended, 1)
	assert.Equal(t, s.ID(), ended[0].Session)
	assert.True(t, ended[0].Handshaken)
	assert.Equal(t, []types.Identifier{modA}, channelsAtEnd)

	assert.Len(t, rec.Frames(), sentBefore)
	assert.Empty(t, s.Channels())
	assert.True(t, s.Closed())
	assert.False(t, s.HandshakeDone())

	_, err = s.Dispatch(modA, nil)
	assert.ErrorIs(t, err, ErrProtocolState)
	assert.ErrorIs(t, s.RegisterChannel(modB, noopHandler()), ErrProtocolState)
	assert.ErrorIs(t, s.CompleteHandshake(), ErrProtocolState)
	assert.ErrorIs(t, s.Send(modA, nil), ErrProtocolState)

	_, ok := mgr.Session(s.ID())
	assert.False(t, ok)
}

// TestSession_CloseBeforeHandshake 握手前关闭只丢弃状态
func TestSession_CloseBeforeHandshake(t *testing.T) {
	mgr := newTestManager(t)
	var ended []types.EvtSessionEnded
	var started int
	mgr.Events().SessionEnded.Register(func(evt types.EvtSessionEnded) error {
		ended = append(ended, evt)
		return nil
	})
	mgr.Events().SessionStarted.Register(func(types.EvtSessionStarted) error {
		started++
		return nil
	})

	rec := &recorder{}
	s, err := mgr.NewSession(rec, nil)
	require.NoError(t, err)
	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.Close())

	assert.Empty(t, rec.Frames())
	require.Len(t, ended, 1)
	assert.False(t, ended[0].Handshaken)
	assert.Zero(t, started)
}

// TestSession_ListenerIsolation 监听器失败不影响会话与其余监听器
func TestSession_ListenerIsolation(t *testing.T) {
	mgr := newTestManager(t)
	var order []string

	mgr.Events().SessionStarted.Register(func(types.EvtSessionStarted) error {
		order = append(order, "first")
		return errors.New("first failed")
	})
	mgr.Events().SessionStarted.Register(func(types.EvtSessionStarted) error {
		panic("second panicked")
	})
	mgr.Events().SessionStarted.Register(func(types.EvtSessionStarted) error {
		order = append(order, "third")
		return nil
	})

	s, err := mgr.NewSession(&recorder{}, nil)
	require.NoError(t, err)

	assert.NoError(t, s.CompleteHandshake())
	assert.Equal(t, []string{"first", "third"}, order)
}

// TestSession_SendFailureIsAdvisory 声明帧发送失败不影响注册结果
func TestSession_SendFailureIsAdvisory(t *testing.T) {
	s, rec := newTestSession(t)
	require.NoError(t, s.CompleteHandshake())

	rec.err = errors.New("link down")
	assert.NoError(t, s.RegisterChannel(modA, noopHandler()))
	assert.Equal(t, []types.Identifier{modA}, s.Channels())
}

// TestSession_Send 发送用户负载
func TestSession_Send(t *testing.T) {
	s, rec := newTestSession(t)

	require.NoError(t, s.Send(modC, []byte("hello")))
	assert.ErrorIs(t, s.Send(channelids.Register, nil), ErrReservedChannel)

	frames := rec.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, modC, frames[0].id)
	assert.Equal(t, []byte("hello"), frames[0].payload)
}

// TestSession_HandlerReceivesSender 处理器通过 sender 回复
func TestSession_HandlerReceivesSender(t *testing.T) {
	s, rec := newTestSession(t)

	require.NoError(t, s.RegisterChannel(modA, pkgif.ChannelHandlerFunc(func(sender pkgif.PacketSender, payload []byte) {
		assert.Equal(t, s.ID(), sender.ID())
		_ = sender.Send(modA, append([]byte("re:"), payload...))
	})))
	require.NoError(t, s.CompleteHandshake())

	_, err := s.Dispatch(modA, []byte("ping"))
	require.NoError(t, err)

	frames := rec.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, []byte("re:ping"), frames[1].payload)
}

// TestSession_ProtoCodec 使用 protobuf 控制帧
func TestSession_ProtoCodec(t *testing.T) {
	mgr, err := NewManager(DefaultConfig().WithControlCodec("proto"), nil, nil)
	require.NoError(t, err)

	rec := &recorder{}
	s, err := mgr.NewSession(rec, nil)
	require.NoError(t, err)
	require.NoError(t, s.RegisterChannel(modA, noopHandler()))
	require.NoError(t, s.CompleteHandshake())

	frames := rec.Frames()
	require.Len(t, frames, 1)
	got, err := ProtoCodec{}.Decode(frames[0].payload)
	require.NoError(t, err)
	assert.Equal(t, []types.Identifier{modA}, got)
}

// ============================================================================
//                              生命周期与处理器的串行化
// ============================================================================

// eventLog 并发安全的事件记录
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) has(e string) bool {
	for _, v := range l.Events() {
		if v == e {
			return true
		}
	}
	return false
}

// newLoggedManager 记录 SessionStarted 与 SessionEnded 的管理器
func newLoggedManager(t *testing.T, journal *eventLog) *Manager {
	t.Helper()
	mgr := newTestManager(t)
	mgr.Events().SessionStarted.Register(func(types.EvtSessionStarted) error {
		journal.add("started")
		return nil
	})
	mgr.Events().SessionEnded.Register(func(types.EvtSessionEnded) error {
		journal.add("ended")
		return nil
	})
	return mgr
}

// TestSession_CloseWaitsForRunningHandler 关闭时正在执行的处理器先结束，排队的被跳过
func TestSession_CloseWaitsForRunningHandler(t *testing.T) {
	var journal eventLog
	mgr := newLoggedManager(t, &journal)

	exec := executor.NewSerial("test")
	s, err := mgr.NewSession(&recorder{}, exec)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.RegisterChannel(modA, pkgif.ChannelHandlerFunc(func(pkgif.PacketSender, []byte) {
		journal.add("a:begin")
		close(entered)
		<-release
		journal.add("a:end")
	})))
	require.NoError(t, s.RegisterChannel(modB, pkgif.ChannelHandlerFunc(func(pkgif.PacketSender, []byte) {
		journal.add("b")
	})))
	require.NoError(t, s.CompleteHandshake())

	_, err = s.Dispatch(modA, nil)
	require.NoError(t, err)
	_, err = s.Dispatch(modB, nil)
	require.NoError(t, err)

	<-entered
	require.NoError(t, s.Close())

	assert.Never(t, func() bool { return journal.has("ended") }, 100*time.Millisecond, 5*time.Millisecond,
		"SessionEnded 不能与处理器并发")

	close(release)
	require.NoError(t, exec.Close())

	assert.Equal(t, []string{"started", "a:begin", "a:end", "ended"}, journal.Events())
	assert.Empty(t, s.Channels())
	_, ok := mgr.Session(s.ID())
	assert.False(t, ok)
}

// TestSession_StartedBeforeHandlers 握手前到达的帧在 SessionStarted 之后交付
func TestSession_StartedBeforeHandlers(t *testing.T) {
	var journal eventLog
	mgr := newLoggedManager(t, &journal)
	require.NoError(t, mgr.Defaults().Register(modB, pkgif.ChannelHandlerFunc(func(_ pkgif.PacketSender, p []byte) {
		journal.add("b:" + string(p))
	})))

	exec := executor.NewSerial("test")
	s, err := mgr.NewSession(&recorder{}, exec)
	require.NoError(t, err)
	require.NoError(t, s.RegisterChannel(modA, pkgif.ChannelHandlerFunc(func(_ pkgif.PacketSender, p []byte) {
		journal.add("a:" + string(p))
	})))

	// modB 的默认处理器在握手时才复制，暂存的帧同样能交付
	handled, err := s.Dispatch(modA, []byte("1"))
	require.NoError(t, err)
	assert.True(t, handled)
	handled, err = s.Dispatch(modB, []byte("2"))
	require.NoError(t, err)
	assert.True(t, handled)

	require.NoError(t, s.CompleteHandshake())
	_, err = s.Dispatch(modA, []byte("3"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, exec.Close())

	assert.Equal(t, []string{"started", "a:1", "b:2", "a:3", "ended"}, journal.Events())
}

// TestSession_EarlyFrameLimit 握手前暂存的帧有上限
func TestSession_EarlyFrameLimit(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.RegisterChannel(modA, noopHandler()))

	for i := 0; i < maxEarlyFrames; i++ {
		_, err := s.Dispatch(modA, nil)
		require.NoError(t, err)
	}
	_, err := s.Dispatch(modA, nil)
	assert.ErrorIs(t, err, ErrProtocolState)
}

// TestSession_CloseBeforeStartedRuns 结束事件先执行时不再补发 SessionStarted
func TestSession_CloseBeforeStartedRuns(t *testing.T) {
	var journal eventLog
	mgr := newLoggedManager(t, &journal)

	var handshaken []bool
	mgr.Events().SessionEnded.Register(func(evt types.EvtSessionEnded) error {
		handshaken = append(handshaken, evt.Handshaken)
		return nil
	})

	exec := executor.NewSerial("test")
	s, err := mgr.NewSession(&recorder{}, exec)
	require.NoError(t, err)

	// 先占住执行器，再依次排入 Ended 与 Started
	release := make(chan struct{})
	require.NoError(t, exec.Execute(func() { <-release }))
	require.NoError(t, s.Close())
	require.NoError(t, exec.Execute(s.fireStartedTask))
	close(release)
	require.NoError(t, exec.Close())

	assert.Equal(t, []string{"ended"}, journal.Events())
	assert.Equal(t, []bool{false}, handshaken)
}

// TestSession_ControlEventsOnExecutor 通道声明通知与处理器在同一执行器上有序触发
func TestSession_ControlEventsOnExecutor(t *testing.T) {
	var journal eventLog
	mgr := newLoggedManager(t, &journal)
	mgr.Events().ChannelsRegistered.Register(func(types.EvtChannelsRegistered) error {
		journal.add("registered")
		return nil
	})

	exec := executor.NewSerial("test")
	s, err := mgr.NewSession(&recorder{}, exec)
	require.NoError(t, err)
	require.NoError(t, s.RegisterChannel(modA, pkgif.ChannelHandlerFunc(func(pkgif.PacketSender, []byte) {
		journal.add("a")
	})))
	require.NoError(t, s.CompleteHandshake())

	_, err = s.Dispatch(modA, nil)
	require.NoError(t, err)
	payload, err := NulCodec{}.Encode([]types.Identifier{modC})
	require.NoError(t, err)
	_, err = s.Dispatch(channelids.Register, payload)
	require.NoError(t, err)
	assert.True(t, s.PeerSupports(modC))

	require.NoError(t, s.Close())
	require.NoError(t, exec.Close())

	assert.Equal(t, []string{"started", "a", "registered", "ended"}, journal.Events())
}
