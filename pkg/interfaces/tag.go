// Package interfaces 定义 chanmux 公共接口
//
// 本文件定义标签数据源接口。
package interfaces

import "github.com/dep2p/go-chanmux/pkg/types"

// TagSnapshot 数据集的一个不可变版本
//
// 同一个 Generation 对应的数据一旦可见就不再变化。
type TagSnapshot[T comparable] interface {
	// Generation 返回版本号，数据集每次变更都会递增
	Generation() uint64

	// Tag 返回标签内容，顺序稳定；标签不存在时返回空切片
	Tag(id types.Identifier) []T
}

// TagSource 可变的权威数据集
type TagSource[T comparable] interface {
	// Current 返回当前版本的快照
	Current() TagSnapshot[T]
}

// TagSourceFunc 函数适配器
type TagSourceFunc[T comparable] func() TagSnapshot[T]

// Current 实现 TagSource
func (f TagSourceFunc[T]) Current() TagSnapshot[T] {
	return f()
}
