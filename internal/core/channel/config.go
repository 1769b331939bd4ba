package channel

import (
	"github.com/dep2p/go-chanmux/config"
)

// Config 通道模块配置
type Config struct {
	// ControlCodec 控制帧编解码器名称
	ControlCodec string

	// UnhandledLogRate 未处理帧日志速率（条/秒）
	UnhandledLogRate float64

	// UnhandledLogBurst 未处理帧日志突发上限
	UnhandledLogBurst int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建通道配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := config.DefaultChannelConfig()
	if cfg != nil {
		c = cfg.Channel
	}
	return Config{
		ControlCodec:      c.ControlCodec,
		UnhandledLogRate:  c.UnhandledLogRate,
		UnhandledLogBurst: c.UnhandledLogBurst,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	_, err := CodecByName(c.ControlCodec)
	return err
}

// WithControlCodec 设置控制帧编解码器
func (c Config) WithControlCodec(name string) Config {
	c.ControlCodec = name
	return c
}
