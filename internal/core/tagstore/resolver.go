package tagstore

import "github.com/dep2p/go-chanmux/pkg/types"

// Resolver 把元素 ID 解析为元素
type Resolver[T comparable] interface {
	Resolve(id types.Identifier) (T, bool)
}

// ResolverFunc 函数适配器
type ResolverFunc[T comparable] func(id types.Identifier) (T, bool)

// Resolve 实现 Resolver
func (f ResolverFunc[T]) Resolve(id types.Identifier) (T, bool) {
	return f(id)
}

// IdentifierResolver 每个 ID 都解析为其自身
func IdentifierResolver() Resolver[types.Identifier] {
	return ResolverFunc[types.Identifier](func(id types.Identifier) (types.Identifier, bool) {
		return id, true
	})
}

// MapResolver 从固定的注册表中解析
func MapResolver[T comparable](registry map[types.Identifier]T) Resolver[T] {
	return ResolverFunc[T](func(id types.Identifier) (T, bool) {
		v, ok := registry[id]
		return v, ok
	})
}
