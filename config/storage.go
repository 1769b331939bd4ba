package config

import (
	"fmt"
	"path/filepath"
)

// StorageConfig 存储配置
//
// 标签定义使用 BadgerDB 持久化：
//
//	${DataDir}/
//	└── chanmux.db/
type StorageConfig struct {
	// DataDir 数据目录路径
	// 默认值: "./data"
	DataDir string `json:"data_dir"`

	// InMemory 仅使用内存存储（测试与临时节点）
	InMemory bool `json:"in_memory"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir: "./data",
	}
}

// Validate 验证存储配置的有效性
func (c StorageConfig) Validate() error {
	if !c.InMemory && c.DataDir == "" {
		return fmt.Errorf("storage: data_dir cannot be empty")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "chanmux.db")
}
