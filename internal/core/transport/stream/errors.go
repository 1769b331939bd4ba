package stream

import "errors"

var (
	// ErrFrameTooLarge 帧超过配置的上限
	ErrFrameTooLarge = errors.New("stream: frame too large")

	// ErrMalformedFrame 帧格式错误
	ErrMalformedFrame = errors.New("stream: malformed frame")

	// ErrConnClosed 连接已关闭
	ErrConnClosed = errors.New("stream: connection closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("stream: listener closed")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("stream: invalid config")
)
