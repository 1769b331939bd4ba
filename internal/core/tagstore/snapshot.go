package tagstore

import (
	"sort"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// Snapshot 数据集的一个不可变版本
type Snapshot[T comparable] struct {
	generation uint64
	tags       map[types.Identifier][]T
	defs       map[types.Identifier]*Definition
}

var _ pkgif.TagSnapshot[string] = (*Snapshot[string])(nil)

func emptySnapshot[T comparable]() *Snapshot[T] {
	return &Snapshot[T]{
		tags: make(map[types.Identifier][]T),
		defs: make(map[types.Identifier]*Definition),
	}
}

// Generation 返回版本号
func (s *Snapshot[T]) Generation() uint64 {
	return s.generation
}

// Tag 返回标签内容，调用方不得修改
func (s *Snapshot[T]) Tag(id types.Identifier) []T {
	return s.tags[id]
}

// Has 标签是否存在
func (s *Snapshot[T]) Has(id types.Identifier) bool {
	_, ok := s.tags[id]
	return ok
}

// IDs 按字典序返回全部标签 ID
func (s *Snapshot[T]) IDs() []types.Identifier {
	ids := make([]types.Identifier, 0, len(s.tags))
	for id := range s.tags {
		ids = append(ids, id)
	}
	sortIdentifiers(ids)
	return ids
}

// Len 返回标签数量
func (s *Snapshot[T]) Len() int {
	return len(s.tags)
}

// Definition 返回标签的合并定义
func (s *Snapshot[T]) Definition(id types.Identifier) (Definition, bool) {
	d, ok := s.defs[id]
	if !ok {
		return Definition{}, false
	}
	return Definition{Entries: append([]Entry(nil), d.Entries...)}, true
}

func sortIdentifiers(ids []types.Identifier) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Namespace != ids[j].Namespace {
			return ids[i].Namespace < ids[j].Namespace
		}
		return ids[i].Path < ids[j].Path
	})
}
