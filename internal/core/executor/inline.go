package executor

import pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"

// Inline 在调用方 goroutine 中直接执行任务
//
// 调用方需自行保证同一会话的 Execute 不会并发调用。
type Inline struct{}

var _ pkgif.Executor = Inline{}

// Execute 立即执行任务
func (Inline) Execute(task func()) error {
	if task == nil {
		return ErrNilTask
	}
	run("inline", task)
	return nil
}
