// Package channel 实现通道注册表与分发器
//
// 一个物理连接上复用多个命名的逻辑通道。每个连接对应一个 Session：
//
//   - 握手前本地注册的通道先排队，握手时以一个控制帧批量声明
//   - 握手后每次注册/注销立即发送一个控制帧
//   - 入站帧按通道 ID 路由到处理器，控制帧只更新对端通道簿
//   - 未注册的通道报告未处理，不视为错误
//
// 两个保留的控制通道见 pkg/channelids。控制帧负载是一组有序的通道 ID，
// 编码方式由 ControlCodec 决定（NulCodec 或 ProtoCodec）。
//
// Manager 持有进程级默认处理器与生命周期监听器，为每个连接创建 Session。
package channel
