package tagstore

import (
	"fmt"

	"github.com/dep2p/go-chanmux/pkg/types"
)

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	resolved
	failed
)

// resolution 单次解析过程的状态
type resolution[T comparable] struct {
	defs     map[types.Identifier]*Definition
	elements Resolver[T]

	state  map[types.Identifier]visitState
	values map[types.Identifier][]T
	errs   map[types.Identifier]error
}

// resolveAll 展开全部标签
//
// 返回成功的标签内容，以及被丢弃的标签及其原因。
func resolveAll[T comparable](defs map[types.Identifier]*Definition, elements Resolver[T]) (map[types.Identifier][]T, map[types.Identifier]error) {
	r := &resolution[T]{
		defs:     defs,
		elements: elements,
		state:    make(map[types.Identifier]visitState, len(defs)),
		values:   make(map[types.Identifier][]T, len(defs)),
		errs:     make(map[types.Identifier]error),
	}
	for id := range defs {
		r.visit(id)
	}
	return r.values, r.errs
}

// visit 深度优先展开一个标签
func (r *resolution[T]) visit(id types.Identifier) error {
	switch r.state[id] {
	case resolved:
		return nil
	case failed:
		return r.errs[id]
	case visiting:
		return fmt.Errorf("%w: #%s", ErrTagCycle, id)
	}

	def, ok := r.defs[id]
	if !ok {
		return fmt.Errorf("%w: tag #%s", ErrMissingReference, id)
	}

	r.state[id] = visiting
	var (
		out  []T
		seen = make(map[T]struct{})
	)
	add := func(x T) {
		if _, dup := seen[x]; !dup {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}

	for _, e := range def.Entries {
		if e.Tag {
			if err := r.visit(e.ID); err != nil {
				if !e.Required {
					continue
				}
				return r.fail(id, fmt.Errorf("#%s -> %w", id, err))
			}
			for _, x := range r.values[e.ID] {
				add(x)
			}
			continue
		}

		x, ok := r.elements.Resolve(e.ID)
		if !ok {
			if !e.Required {
				continue
			}
			return r.fail(id, fmt.Errorf("%w: element %s in #%s", ErrMissingReference, e.ID, id))
		}
		add(x)
	}

	r.state[id] = resolved
	r.values[id] = out
	return nil
}

func (r *resolution[T]) fail(id types.Identifier, err error) error {
	r.state[id] = failed
	r.errs[id] = err
	return err
}
