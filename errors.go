package chanmux

import (
	"errors"

	"github.com/dep2p/go-chanmux/internal/core/channel"
	"github.com/dep2p/go-chanmux/internal/core/executor"
	"github.com/dep2p/go-chanmux/internal/core/tag"
	"github.com/dep2p/go-chanmux/internal/core/tagstore"
	"github.com/dep2p/go-chanmux/internal/core/transport/stream"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 通道错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrDuplicateChannel 通道已注册
	ErrDuplicateChannel = channel.ErrDuplicateChannel

	// ErrReservedChannel 保留的控制通道
	ErrReservedChannel = channel.ErrReservedChannel

	// ErrUnknownChannel 通道未注册
	ErrUnknownChannel = channel.ErrUnknownChannel

	// ErrProtocolState 会话状态不允许该操作
	ErrProtocolState = channel.ErrProtocolState

	// ErrInvalidControlFrame 控制帧无法解码
	ErrInvalidControlFrame = channel.ErrInvalidControlFrame

	// ErrInvalidIdentifier 标识符格式错误
	ErrInvalidIdentifier = types.ErrInvalidIdentifier

	// ────────────────────────────────────────────────────────────────────────
	// 标签错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrCrossPartitionLookup 跨分区查询标签
	ErrCrossPartitionLookup = tag.ErrCrossPartitionLookup

	// ErrTagCycle 标签引用成环
	ErrTagCycle = tagstore.ErrTagCycle

	// ErrMissingReference 引用的标签或元素不存在
	ErrMissingReference = tagstore.ErrMissingReference

	// ────────────────────────────────────────────────────────────────────────
	// 执行与传输错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrExecutorClosed 执行器已关闭
	ErrExecutorClosed = executor.ErrClosed

	// ErrFrameTooLarge 帧超过上限
	ErrFrameTooLarge = stream.ErrFrameTooLarge
)
