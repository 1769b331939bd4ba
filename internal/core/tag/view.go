package tag

// View 某个版本下标签的不可变内容
//
// 保留数据集给出的顺序，同时提供 O(1) 成员检查。
type View[T comparable] struct {
	values []T
	set    map[T]struct{}
}

// NewView 创建视图，重复元素只保留第一次出现
func NewView[T comparable](values []T) *View[T] {
	v := &View[T]{
		values: make([]T, 0, len(values)),
		set:    make(map[T]struct{}, len(values)),
	}
	for _, x := range values {
		if _, dup := v.set[x]; dup {
			continue
		}
		v.set[x] = struct{}{}
		v.values = append(v.values, x)
	}
	return v
}

// Values 返回元素副本
func (v *View[T]) Values() []T {
	out := make([]T, len(v.values))
	copy(out, v.values)
	return out
}

// Len 返回元素数量
func (v *View[T]) Len() int {
	return len(v.values)
}

// At 返回第 i 个元素
func (v *View[T]) At(i int) T {
	return v.values[i]
}

// Contains 成员检查
func (v *View[T]) Contains(x T) bool {
	_, ok := v.set[x]
	return ok
}

// Each 按顺序遍历，fn 返回 false 时停止
func (v *View[T]) Each(fn func(T) bool) {
	for _, x := range v.values {
		if !fn(x) {
			return
		}
	}
}
