package channel

import "errors"

// 通道模块错误定义
var (
	// ErrDuplicateChannel 通道已注册
	ErrDuplicateChannel = errors.New("channel: channel already registered")

	// ErrReservedChannel 保留的控制通道不能注册处理器
	ErrReservedChannel = errors.New("channel: reserved channel")

	// ErrUnknownChannel 通道未注册
	ErrUnknownChannel = errors.New("channel: channel not registered")

	// ErrProtocolState 调用违反会话状态约定（重复握手、关闭后分发等）
	ErrProtocolState = errors.New("channel: invalid protocol state")

	// ErrInvalidControlFrame 控制帧负载无法解码
	ErrInvalidControlFrame = errors.New("channel: invalid control frame")

	// ErrNilHandler 处理器为空
	ErrNilHandler = errors.New("channel: nil handler")

	// ErrUnknownCodec 未知的控制帧编解码器
	ErrUnknownCodec = errors.New("channel: unknown control codec")

	// ErrNilTransport 传输为空
	ErrNilTransport = errors.New("channel: nil transport")

	// ErrManagerClosed 管理器已关闭
	ErrManagerClosed = errors.New("channel: manager closed")
)
