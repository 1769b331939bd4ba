package config

import "fmt"

// 控制帧编解码器名称
const (
	// CodecNul 以 NUL 分隔的通道列表
	CodecNul = "nul"
	// CodecProto protobuf wire 格式（repeated string）
	CodecProto = "proto"
)

// ChannelConfig 通道注册与分发配置
type ChannelConfig struct {
	// ControlCodec 控制帧负载编码，"nul" 或 "proto"
	// 默认值: "nul"
	ControlCodec string `json:"control_codec"`

	// UnhandledLogRate 未处理帧日志每秒最多输出条数
	// 默认值: 1
	UnhandledLogRate float64 `json:"unhandled_log_rate"`

	// UnhandledLogBurst 未处理帧日志突发上限
	// 默认值: 5
	UnhandledLogBurst int `json:"unhandled_log_burst"`
}

// DefaultChannelConfig 返回默认通道配置
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		ControlCodec:      CodecNul,
		UnhandledLogRate:  1,
		UnhandledLogBurst: 5,
	}
}

// Validate 验证通道配置
func (c ChannelConfig) Validate() error {
	switch c.ControlCodec {
	case CodecNul, CodecProto:
	default:
		return fmt.Errorf("channel: unknown control_codec %q", c.ControlCodec)
	}
	if c.UnhandledLogRate < 0 {
		return fmt.Errorf("channel: unhandled_log_rate must be >= 0")
	}
	if c.UnhandledLogBurst < 0 {
		return fmt.Errorf("channel: unhandled_log_burst must be >= 0")
	}
	return nil
}
