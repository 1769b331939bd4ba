package tagstore

import "errors"

// 标签存储错误定义
var (
	// ErrTagCycle 标签引用形成循环
	ErrTagCycle = errors.New("tagstore: tag reference cycle")

	// ErrMissingReference 必需的元素或标签不存在
	ErrMissingReference = errors.New("tagstore: missing required reference")

	// ErrClosed 存储已关闭
	ErrClosed = errors.New("tagstore: closed")

	// ErrInvalidTagFile 标签文件格式错误
	ErrInvalidTagFile = errors.New("tagstore: invalid tag file")

	// ErrNilResolver 元素解析器为空
	ErrNilResolver = errors.New("tagstore: nil resolver")
)
