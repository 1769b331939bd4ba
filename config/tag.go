package config

import (
	"fmt"
	"strings"
	"time"
)

// TagConfig 标签数据包配置
//
// 数据包目录结构：
//
//	${Pack}/
//	└── tags/
//	    └── <kind>/
//	        └── <namespace>/
//	            └── <path>.yaml
type TagConfig struct {
	// Packs 数据包目录，按顺序叠加
	Packs []string `json:"packs,omitempty"`

	// Kind 元素种类，对应数据包中 tags/<kind>/ 目录
	// 默认值: "channels"
	Kind string `json:"kind"`

	// Watch 是否监视数据包目录并自动重新加载
	Watch bool `json:"watch"`

	// WatchDebounce 文件变更合并窗口
	// 默认值: 250ms
	WatchDebounce Duration `json:"watch_debounce"`

	// Persist 重新加载后是否把合并结果写入存储
	// 默认值: true
	Persist bool `json:"persist"`
}

// DefaultTagConfig 返回默认标签配置
func DefaultTagConfig() TagConfig {
	return TagConfig{
		Kind:          "channels",
		WatchDebounce: Duration(250 * time.Millisecond),
		Persist:       true,
	}
}

// Validate 验证标签配置
func (c TagConfig) Validate() error {
	if c.Kind == "" || strings.ContainsAny(c.Kind, `/\:`) {
		return fmt.Errorf("tag: invalid kind %q", c.Kind)
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return fmt.Errorf("tag: watch_debounce must be positive when watch is enabled")
	}
	for _, p := range c.Packs {
		if p == "" {
			return fmt.Errorf("tag: empty pack path")
		}
	}
	return nil
}
