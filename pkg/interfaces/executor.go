package interfaces

// Executor 执行上下文协作方
//
// Execute 将任务调度到连接专属的串行上下文中执行，
// 同一个 Executor 上的任务按提交顺序逐个执行。
type Executor interface {
	Execute(task func()) error
}

// ExecutorFunc 函数适配器
type ExecutorFunc func(task func()) error

// Execute 实现 Executor
func (f ExecutorFunc) Execute(task func()) error {
	return f(task)
}
