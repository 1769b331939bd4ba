package tag

import (
	"github.com/dep2p/go-chanmux/internal/core/metrics"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// Option Delegate 与 Factory 的选项
type Option func(*options)

type options struct {
	partition types.PartitionID
	foreign   func(any) bool
	metrics   *metrics.Metrics
}

// WithPartition 设置视图所属分区
//
// 实现 types.Partitioned 的元素若报告不同分区，Contains 返回 ErrCrossPartitionLookup。
func WithPartition(p types.PartitionID) Option {
	return func(o *options) {
		o.partition = p
	}
}

// WithForeignCheck 设置额外的跨分区判定
//
// 用于元素类型本身不携带分区信息、但调用方能按身份判断来源的场景。
func WithForeignCheck[T comparable](fn func(T) bool) Option {
	return func(o *options) {
		if fn == nil {
			o.foreign = nil
			return
		}
		o.foreign = func(v any) bool {
			x, ok := v.(T)
			return ok && fn(x)
		}
	}
}

// WithMetrics 记录缓存命中与重算
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
