// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，带 DefaultXxxConfig 与 Validate
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Channel.ControlCodec = config.CodecProto
//
//	cfg, err := config.LoadFile("chanmux.json")
package config

import "errors"

// Config 是 chanmux 的完整配置结构
//
// 配置按照功能模块组织：
//   - Channel: 通道注册与分发
//   - Tag: 标签数据包与热加载
//   - Storage: 持久化存储
//   - Transport: 流传输
//   - Log: 日志
//   - Metrics: 指标
type Config struct {
	// Channel 通道配置
	Channel ChannelConfig `json:"channel"`

	// Tag 标签配置
	Tag TagConfig `json:"tag"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Transport 传输配置
	Transport TransportConfig `json:"transport"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Channel:   DefaultChannelConfig(),
		Tag:       DefaultTagConfig(),
		Storage:   DefaultStorageConfig(),
		Transport: DefaultTransportConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Channel.Validate(); err != nil {
		return err
	}
	if err := c.Tag.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}
