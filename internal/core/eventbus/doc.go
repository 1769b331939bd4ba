// Package eventbus 实现进程内事件分发
//
// 提供两种分发方式：
//   - Listeners：同步、有序的监听器列表，按注册顺序调用，
//     单个监听器出错或 panic 不影响其余监听器
//   - Bus：类型安全的异步发布/订阅，订阅者通过通道接收事件
//
// 会话生命周期事件先同步分发给 Listeners，再发射到 Bus。
//
// # 快速开始
//
//	var started eventbus.Listeners[types.EvtSessionStarted]
//	started.Register(func(evt types.EvtSessionStarted) error {
//	    // 处理事件
//	    return nil
//	})
//	_ = started.Invoke(types.EvtSessionStarted{Session: id})
//
//	bus := eventbus.NewBus()
//	sub, _ := bus.Subscribe(new(types.EvtSessionStarted))
//	defer sub.Close()
//
// # 并发安全
//
// Listeners 的注册与调用可以并发进行，调用时使用注册列表的快照。
// Bus 使用 sync.RWMutex 和 atomic 保证并发安全。
package eventbus
