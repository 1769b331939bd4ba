package tagstore

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWatcher_Reload 文件变更合并后触发重新加载
func TestWatcher_Reload(t *testing.T) {
	pack := t.TempDir()
	writeTag(t, pack, "channels", "mod:core", "values: [mod:a]")

	s, err := New(DefaultConfig().WithPacks(pack), IdentifierResolver())
	require.NoError(t, err)
	require.NoError(t, s.Reload(context.Background()))

	var reloads atomic.Int32
	w, err := NewWatcher([]string{pack}, 50*time.Millisecond, func(ctx context.Context) error {
		reloads.Add(1)
		return s.Reload(ctx)
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	writeTag(t, pack, "channels", "mod:core", "values: [mod:b]")
	// 新建的命名空间目录同样被监视
	writeTag(t, pack, "channels", "other:extra", "values: [other:x]")

	core := s.Tag(id("mod:core"))
	require.Eventually(t, func() bool {
		return len(core.Values()) == 1 && core.Values()[0] == id("mod:b")
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return s.Snapshot().Has(id("other:extra"))
	}, 5*time.Second, 20*time.Millisecond)

	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

// TestWatcher_MissingDir 不存在的目录被跳过
func TestWatcher_MissingDir(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing")}, time.Second, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Start(context.Background()), ErrClosed)
}

// TestNewWatcher_InvalidDebounce 合并窗口必须为正
func TestNewWatcher_InvalidDebounce(t *testing.T) {
	_, err := NewWatcher(nil, 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}

// TestWatcher_Debounce 合并窗口内的多次变更只触发一次重新加载
func TestWatcher_Debounce(t *testing.T) {
	const debounce = time.Second
	mock := clock.NewMock()

	var reloads atomic.Int32
	w, err := NewWatcher(nil, debounce, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, WithWatchClock(mock))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	w.schedule()
	mock.Add(debounce / 2)
	w.schedule()
	mock.Add(debounce / 2)
	assert.Zero(t, reloads.Load(), "窗口被重置，不应触发")

	mock.Add(debounce)
	require.Eventually(t, func() bool { return reloads.Load() == 1 }, time.Second, 5*time.Millisecond)

	// 新的变更开启新的窗口
	w.schedule()
	mock.Add(debounce)
	require.Eventually(t, func() bool { return reloads.Load() == 2 }, time.Second, 5*time.Millisecond)
}

// TestWatcher_CloseStopsPending 关闭后挂起的重新加载不再执行
func TestWatcher_CloseStopsPending(t *testing.T) {
	mock := clock.NewMock()

	var reloads atomic.Int32
	w, err := NewWatcher(nil, time.Second, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, WithWatchClock(mock))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.schedule()
	require.NoError(t, w.Close())
	mock.Add(time.Minute)

	assert.Never(t, func() bool { return reloads.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}
