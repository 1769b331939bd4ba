// Package interfaces 定义 chanmux 的公共接口
//
// 采用扁平命名，一个接口文件对应一组协作方：
//
//   - channel.go   - 通道处理器、发送方、传输协作方与控制帧编解码器
//   - executor.go  - 会话执行上下文
//   - tag.go       - 标签数据源与快照
//   - eventbus.go  - 事件总线
//
// # 依赖关系
//
// 本包只依赖 pkg/types，实现位于 internal/core 下对应目录。
package interfaces
