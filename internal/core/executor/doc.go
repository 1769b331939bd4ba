// Package executor 提供会话执行上下文
//
// 每个会话的处理器调用都在一个串行上下文中进行：
//   - Serial：单独的 goroutine 按提交顺序逐个执行任务
//   - Inline：在调用方 goroutine 中直接执行，适合宿主已有主循环的场景和测试
//
// 任务 panic 会被恢复并记录，不会终止执行上下文。
package executor
