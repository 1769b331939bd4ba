// Package types 定义 chanmux 公共类型
//
// 本文件定义会话生命周期事件。
package types

import "time"

// ============================================================================
//                              会话事件
// ============================================================================

// EvtSessionStarted 握手完成、会话可以发送数据时触发
type EvtSessionStarted struct {
	Session   SessionID
	Timestamp time.Time
}

// EvtSessionEnded 会话关闭时触发，每个会话恰好一次
type EvtSessionEnded struct {
	Session SessionID
	// Handshaken 是否已触发过 SessionStarted
	Handshaken bool
	Timestamp  time.Time
}

// ============================================================================
//                              通道事件
// ============================================================================

// EvtChannelsRegistered 对端声明新增支持的通道
//
// Channels 仅包含本次新增的通道，顺序与控制帧一致。
type EvtChannelsRegistered struct {
	Session   SessionID
	Channels  []Identifier
	Timestamp time.Time
}

// EvtChannelsUnregistered 对端声明不再支持的通道
type EvtChannelsUnregistered struct {
	Session   SessionID
	Channels  []Identifier
	Timestamp time.Time
}
