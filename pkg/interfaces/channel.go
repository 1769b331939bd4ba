// Package interfaces 定义 chanmux 公共接口
//
// 本文件定义通道处理器与传输协作方接口。
package interfaces

import "github.com/dep2p/go-chanmux/pkg/types"

// PacketSender 向对端发送通道数据
//
// 对端未声明支持的通道也可以发送，传输层不会报错，只是对端可能不处理。
type PacketSender interface {
	// ID 返回会话 ID
	ID() types.SessionID

	// Send 在指定通道上发送负载
	Send(channel types.Identifier, payload []byte) error
}

// ChannelHandler 通道处理器
//
// Receive 在会话的执行上下文中被调用，同一会话内不会并发。
// payload 为入站帧的原始负载，未经修改。
type ChannelHandler interface {
	Receive(sender PacketSender, payload []byte)
}

// ChannelHandlerFunc 函数适配器
type ChannelHandlerFunc func(sender PacketSender, payload []byte)

// Receive 实现 ChannelHandler
func (f ChannelHandlerFunc) Receive(sender PacketSender, payload []byte) {
	f(sender, payload)
}

// Transport 传输协作方
//
// 负责把 (通道, 负载) 写到物理连接上，连接的打开与关闭由其自身管理。
type Transport interface {
	Send(channel types.Identifier, payload []byte) error
}

// TransportFunc 函数适配器
type TransportFunc func(channel types.Identifier, payload []byte) error

// Send 实现 Transport
func (f TransportFunc) Send(channel types.Identifier, payload []byte) error {
	return f(channel, payload)
}

// ControlCodec 控制帧负载编解码器
//
// 控制通道的负载是一组有序的通道 ID。
type ControlCodec interface {
	// Name 返回编解码器名称
	Name() string

	// Encode 编码通道列表
	Encode(ids []types.Identifier) ([]byte, error)

	// Decode 解码通道列表，保持原有顺序
	Decode(payload []byte) ([]types.Identifier, error)
}
