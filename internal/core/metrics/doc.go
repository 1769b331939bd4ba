// Package metrics 提供 chanmux 的 Prometheus 指标
//
// 指标按组件划分子系统：
//   - channel: 帧分发、控制帧、监听器失败、活跃会话
//   - transport: 入站/出站字节与帧
//   - tag: 视图缓存命中/重算、数据集重新加载
//
// 所有记录方法都可以在 nil *Metrics 上安全调用，未启用指标时直接传 nil。
package metrics
