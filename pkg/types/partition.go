package types

// PartitionID 数据集分区标识
//
// 结构相同但实例不同的两个数据集（例如内置集与服务器下发集）
// 使用不同的分区 ID，防止跨分区比较永远返回 false。
type PartitionID string

// Partitioned 由能报告自身来源分区的元素实现
type Partitioned interface {
	Partition() PartitionID
}
