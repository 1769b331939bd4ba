// Package types 定义 chanmux 公共类型
//
// 本文件定义通道与标签共用的标识符类型。
package types

import (
	"fmt"
	"strings"
)

// DefaultNamespace 未写命名空间时使用的默认命名空间
const DefaultNamespace = "chanmux"

// Identifier 命名空间化的标识符
//
// 文本形式为 "namespace:path"，可直接作为 map 键比较。
// 通道 ID 与标签 ID 都使用该类型。
type Identifier struct {
	Namespace string
	Path      string
}

// NewIdentifier 创建并校验标识符
func NewIdentifier(namespace, path string) (Identifier, error) {
	id := Identifier{Namespace: namespace, Path: path}
	if err := id.Validate(); err != nil {
		return Identifier{}, err
	}
	return id, nil
}

// ParseIdentifier 解析 "namespace:path" 形式的标识符
//
// 不含冒号时使用 DefaultNamespace。
func ParseIdentifier(s string) (Identifier, error) {
	ns, path := DefaultNamespace, s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		ns, path = s[:i], s[i+1:]
	}
	return NewIdentifier(ns, path)
}

// MustParseIdentifier 解析标识符，失败时 panic
//
// 仅用于常量定义和测试。
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Validate 校验命名空间与路径字符集
func (id Identifier) Validate() error {
	if id.Namespace == "" || id.Path == "" {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id.String())
	}
	for i := 0; i < len(id.Namespace); i++ {
		if !validNamespaceChar(id.Namespace[i]) {
			return fmt.Errorf("%w: bad namespace character in %q", ErrInvalidIdentifier, id.String())
		}
	}
	for i := 0; i < len(id.Path); i++ {
		if !validPathChar(id.Path[i]) {
			return fmt.Errorf("%w: bad path character in %q", ErrInvalidIdentifier, id.String())
		}
	}
	return nil
}

// IsZero 检查是否为零值
func (id Identifier) IsZero() bool {
	return id.Namespace == "" && id.Path == ""
}

// String 返回 "namespace:path"
func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

// MarshalText 实现 encoding.TextMarshaler
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func validNamespaceChar(c byte) bool {
	return c == '_' || c == '-' || c == '.' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func validPathChar(c byte) bool {
	return validNamespaceChar(c) || c == '/'
}
