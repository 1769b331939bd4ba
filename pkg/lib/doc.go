// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - log: 基于 slog 的分组件日志
//
// # 与 pkg/ 其他目录的关系
//
//   - interfaces/: 组件公共接口
//   - types/: 公共类型定义
//   - channelids/: 保留通道 ID 常量
//   - lib/: 基础设施工具库（本目录）
package lib
