package config

import (
	"fmt"
	"time"
)

// TransportConfig 流传输配置
type TransportConfig struct {
	// ListenAddr TCP 监听地址
	// 默认值: "127.0.0.1:25580"
	ListenAddr string `json:"listen_addr"`

	// MaxFrameSize 单帧负载上限（字节）
	// 默认值: 1 MiB
	MaxFrameSize int `json:"max_frame_size"`

	// WriteTimeout 单帧写超时，0 表示不设置
	// 默认值: 10s
	WriteTimeout Duration `json:"write_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:   "127.0.0.1:25580",
		MaxFrameSize: 1 << 20,
		WriteTimeout: Duration(10 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("transport: max_frame_size must be positive")
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("transport: write_timeout must be >= 0")
	}
	return nil
}
