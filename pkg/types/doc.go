// Package types 定义 chanmux 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 chanmux 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - identifier.go - Identifier（命名空间:路径），通道与标签共用
//   - session.go    - SessionID
//   - partition.go  - PartitionID 与 Partitioned 接口
//   - events.go     - 会话生命周期事件
//   - errors.go     - 公共错误定义
package types
