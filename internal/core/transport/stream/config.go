package stream

import (
	"fmt"
	"time"

	"github.com/dep2p/go-chanmux/config"
)

// Config 流传输配置
type Config struct {
	// ListenAddr TCP 监听地址
	ListenAddr string

	// MaxFrameSize 单帧（标识符加负载）上限
	MaxFrameSize int

	// WriteTimeout 单帧写超时，0 表示不设置
	WriteTimeout time.Duration

	// DialTimeout 拨号超时
	DialTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建流传输配置
func ConfigFromUnified(cfg *config.Config) Config {
	tc := config.DefaultTransportConfig()
	if cfg != nil {
		tc = cfg.Transport
	}
	return Config{
		ListenAddr:   tc.ListenAddr,
		MaxFrameSize: tc.MaxFrameSize,
		WriteTimeout: tc.WriteTimeout.Duration(),
		DialTimeout:  10 * time.Second,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("%w: max frame size must be positive", ErrInvalidConfig)
	}
	if c.WriteTimeout < 0 || c.DialTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

// WithMaxFrameSize 设置单帧上限
func (c Config) WithMaxFrameSize(n int) Config {
	c.MaxFrameSize = n
	return c
}

// WithWriteTimeout 设置写超时
func (c Config) WithWriteTimeout(d time.Duration) Config {
	c.WriteTimeout = d
	return c
}

// WithListenAddr 设置监听地址
func (c Config) WithListenAddr(addr string) Config {
	c.ListenAddr = addr
	return c
}
