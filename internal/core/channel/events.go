package channel

import (
	"github.com/dep2p/go-chanmux/internal/core/eventbus"
	"github.com/dep2p/go-chanmux/internal/core/metrics"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// Events 会话生命周期监听器
//
// 每种事件一个有序监听器列表，按注册顺序同步调用。
// 监听器与处理器一样提交到会话的执行器上，不持有会话锁。
type Events struct {
	SessionStarted       eventbus.Listeners[types.EvtSessionStarted]
	SessionEnded         eventbus.Listeners[types.EvtSessionEnded]
	ChannelsRegistered   eventbus.Listeners[types.EvtChannelsRegistered]
	ChannelsUnregistered eventbus.Listeners[types.EvtChannelsUnregistered]
}

// emitters 异步事件总线发射器
type emitters struct {
	started      pkgif.Emitter
	ended        pkgif.Emitter
	registered   pkgif.Emitter
	unregistered pkgif.Emitter
}

// newEmitters 为四种事件创建发射器，bus 为 nil 时返回 nil
func newEmitters(bus pkgif.EventBus) (*emitters, error) {
	if bus == nil {
		return nil, nil
	}

	var (
		e   emitters
		err error
	)
	if e.started, err = bus.Emitter(new(types.EvtSessionStarted)); err != nil {
		return nil, err
	}
	if e.ended, err = bus.Emitter(new(types.EvtSessionEnded)); err != nil {
		return nil, err
	}
	if e.registered, err = bus.Emitter(new(types.EvtChannelsRegistered)); err != nil {
		return nil, err
	}
	if e.unregistered, err = bus.Emitter(new(types.EvtChannelsUnregistered)); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *emitters) close() {
	if e == nil {
		return
	}
	_ = e.started.Close()
	_ = e.ended.Close()
	_ = e.registered.Close()
	_ = e.unregistered.Close()
}

// bindFailureMetrics 把监听器失败计入指标
func (ev *Events) bindFailureMetrics(m *metrics.Metrics) {
	onFailure := func(event string, _ int, _ error) {
		m.ObserveListenerFailure(event)
	}
	ev.SessionStarted.OnFailure(onFailure)
	ev.SessionEnded.OnFailure(onFailure)
	ev.ChannelsRegistered.OnFailure(onFailure)
	ev.ChannelsUnregistered.OnFailure(onFailure)
}

// fireStarted 同步分发后再发射到总线
//
// 监听器错误已在 Listeners 内部记录，这里不再上抛。
func (m *Manager) fireStarted(evt types.EvtSessionStarted) {
	_ = m.events.SessionStarted.Invoke(evt)
	if m.emitters != nil {
		_ = m.emitters.started.Emit(evt)
	}
}

func (m *Manager) fireEnded(evt types.EvtSessionEnded) {
	_ = m.events.SessionEnded.Invoke(evt)
	if m.emitters != nil {
		_ = m.emitters.ended.Emit(evt)
	}
}

func (m *Manager) fireRegistered(evt types.EvtChannelsRegistered) {
	_ = m.events.ChannelsRegistered.Invoke(evt)
	if m.emitters != nil {
		_ = m.emitters.registered.Emit(evt)
	}
}

func (m *Manager) fireUnregistered(evt types.EvtChannelsUnregistered) {
	_ = m.events.ChannelsUnregistered.Invoke(evt)
	if m.emitters != nil {
		_ = m.emitters.unregistered.Emit(evt)
	}
}
