package config

import "fmt"

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否采集指标
	// 默认值: true
	Enable bool `json:"enable"`

	// Namespace Prometheus 指标命名空间
	// 默认值: "chanmux"
	Namespace string `json:"namespace"`

	// ListenAddr /metrics HTTP 监听地址，空表示不暴露
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enable:    true,
		Namespace: "chanmux",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Enable && c.Namespace == "" {
		return fmt.Errorf("metrics: namespace cannot be empty")
	}
	return nil
}
