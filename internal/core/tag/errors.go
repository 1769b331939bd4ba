package tag

import "errors"

// 标签模块错误定义
var (
	// ErrCrossPartitionLookup 元素来自另一个数据集分区
	ErrCrossPartitionLookup = errors.New("tag: element belongs to a different partition")
)
