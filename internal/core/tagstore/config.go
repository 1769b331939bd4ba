package tagstore

import (
	"fmt"
	"time"

	"github.com/dep2p/go-chanmux/config"
)

// Config 标签存储配置
type Config struct {
	// Packs 数据包目录，按顺序叠加
	Packs []string

	// Kind 元素种类，对应 tags/<kind>/ 目录
	Kind string

	// Persist 重新加载后是否写入存储
	Persist bool

	// Watch 是否监视数据包目录
	Watch bool

	// WatchDebounce 文件变更合并窗口
	WatchDebounce time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建标签存储配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := config.DefaultTagConfig()
	if cfg != nil {
		c = cfg.Tag
	}
	return Config{
		Packs:         append([]string(nil), c.Packs...),
		Kind:          c.Kind,
		Persist:       c.Persist,
		Watch:         c.Watch,
		WatchDebounce: c.WatchDebounce.Duration(),
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Kind == "" {
		return fmt.Errorf("tagstore: empty kind")
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return fmt.Errorf("tagstore: watch debounce must be positive")
	}
	return nil
}

// WithPacks 设置数据包目录
func (c Config) WithPacks(packs ...string) Config {
	c.Packs = packs
	return c
}

// WithKind 设置元素种类
func (c Config) WithKind(kind string) Config {
	c.Kind = kind
	return c
}
