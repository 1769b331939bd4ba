package types

import "github.com/google/uuid"

// SessionID 会话标识符，每个连接一个
type SessionID string

// NewSessionID 生成随机会话 ID
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// String 返回字符串形式
func (s SessionID) String() string {
	return string(s)
}

// ShortString 返回前 8 个字符，用于日志
func (s SessionID) ShortString() string {
	if len(s) <= 8 {
		return string(s)
	}
	return string(s[:8])
}

// Validate 检查会话 ID 非空
func (s SessionID) Validate() error {
	if s == "" {
		return ErrEmptySessionID
	}
	return nil
}
