// Package channelids 定义 chanmux 保留的控制通道 ID。
//
// # 唯一真源原则
//
// 本包是控制通道 ID 的唯一权威来源，其他模块需要判断通道是否保留时
// 必须调用 IsReserved，禁止在其他位置定义字面量。
//
// # 控制通道
//
//   - chanmux:register   - 对端声明新增支持的通道
//   - chanmux:unregister - 对端声明不再支持的通道
//
// 两个控制通道的负载都是一组通道 ID，编码格式由会话的控制帧编解码器决定。
// 用户处理器不能注册在控制通道上。
package channelids
