package executor

import "errors"

var (
	// ErrClosed 执行器已关闭
	ErrClosed = errors.New("executor: closed")

	// ErrNilTask 空任务
	ErrNilTask = errors.New("executor: nil task")
)
