package executor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSerial_Order 测试任务按提交顺序执行
func TestSerial_Order(t *testing.T) {
	s := NewSerial("test")

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.NoError(t, s.Execute(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}

	require.NoError(t, s.Close())

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

// TestSerial_NoConcurrency 测试任务不会并发执行
func TestSerial_NoConcurrency(t *testing.T) {
	s := NewSerial("test")

	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.Execute(func() {
					n := running.Add(1)
					if n > maxRunning.Load() {
						maxRunning.Store(n)
					}
					time.Sleep(time.Microsecond)
					running.Add(-1)
				})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, s.Close())

	assert.Equal(t, int32(1), maxRunning.Load())
}

// TestSerial_PanicRecovered 测试 panic 不会终止执行器
func TestSerial_PanicRecovered(t *testing.T) {
	s := NewSerial("test")

	ran := make(chan struct{})
	require.NoError(t, s.Execute(func() { panic("boom") }))
	require.NoError(t, s.Execute(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("panic 之后的任务没有执行")
	}
	require.NoError(t, s.Close())
}

// TestSerial_Closed 测试关闭后拒绝任务
func TestSerial_Closed(t *testing.T) {
	s := NewSerial("test")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Execute(func() {}), ErrClosed)
	assert.ErrorIs(t, s.Execute(nil), ErrNilTask)
	assert.Equal(t, 0, s.Pending())
}

// TestInline 测试内联执行器
func TestInline(t *testing.T) {
	called := false
	require.NoError(t, Inline{}.Execute(func() { called = true }))
	assert.True(t, called)

	assert.NotPanics(t, func() {
		_ = Inline{}.Execute(func() { panic("boom") })
	})
	assert.ErrorIs(t, Inline{}.Execute(nil), ErrNilTask)
}
