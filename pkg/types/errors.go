// Package types 定义 chanmux 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

var (
	// ErrInvalidIdentifier 无效的标识符
	ErrInvalidIdentifier = errors.New("types: invalid identifier")

	// ErrEmptySessionID 空会话 ID
	ErrEmptySessionID = errors.New("types: empty session ID")
)
