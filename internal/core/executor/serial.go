package executor

import (
	"sync"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
)

var logger = log.Logger("core/executor")

// Serial 串行执行器
//
// 任务按提交顺序在同一个 goroutine 中执行，不会并发。
// 队列无界，Execute 不会阻塞调用方。
type Serial struct {
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	done chan struct{}
}

var _ pkgif.Executor = (*Serial)(nil)

// NewSerial 创建并启动串行执行器
func NewSerial(name string) *Serial {
	s := &Serial{
		name: name,
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// Execute 提交任务
func (s *Serial) Execute(task func()) error {
	if task == nil {
		return ErrNilTask
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.queue = append(s.queue, task)
	s.cond.Signal()
	return nil
}

// Close 停止接收新任务，执行完已排队的任务后返回
func (s *Serial) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Signal()
	}
	s.mu.Unlock()

	<-s.done
	return nil
}

// Pending 返回排队中的任务数量
func (s *Serial) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Serial) loop() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		run(s.name, task)
	}
}

// run 执行单个任务，恢复 panic
func run(name string, task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("任务 panic",
				"executor", name,
				"panic", rec)
		}
	}()
	task()
}
