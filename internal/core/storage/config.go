package storage

import (
	"time"

	"github.com/dep2p/go-chanmux/config"
)

// Config 存储模块配置
type Config struct {
	// Path BadgerDB 数据库目录，InMemory 时忽略
	Path string

	// InMemory 仅使用内存
	InMemory bool

	// SyncWrites 是否同步写入
	SyncWrites bool

	// GCInterval 值日志垃圾回收间隔，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Path:           config.DefaultStorageConfig().DBPath(),
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig 返回内存模式配置（测试与临时节点）
func InMemoryConfig() Config {
	c := DefaultConfig()
	c.Path = ""
	c.InMemory = true
	c.GCInterval = 0
	return c
}

// ConfigFromUnified 从统一配置创建存储配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Storage.InMemory {
		return InMemoryConfig()
	}
	c.Path = cfg.Storage.DBPath()
	return c
}

// Validate 验证配置
func (c Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return ErrInvalidConfig
	}
	if c.GCDiscardRatio < 0 || c.GCDiscardRatio >= 1 {
		return ErrInvalidConfig
	}
	return nil
}
