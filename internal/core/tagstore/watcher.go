package tagstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc 重新加载回调
type ReloadFunc func(ctx context.Context) error

// WatcherOption 监视器选项
type WatcherOption func(*Watcher)

// WithWatchClock 设置合并窗口使用的时钟，测试中传入 clock.NewMock()
func WithWatchClock(c clock.Clock) WatcherOption {
	return func(w *Watcher) {
		if c != nil {
			w.clock = c
		}
	}
}

// Watcher 监视数据包目录，变更合并后触发重新加载
//
// fsnotify 不递归监视，新建的子目录在收到事件时补充加入。
type Watcher struct {
	dirs     []string
	debounce time.Duration
	reload   ReloadFunc
	clock    clock.Clock

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *clock.Timer
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewWatcher 创建监视器，Start 之前不产生任何事件
func NewWatcher(dirs []string, debounce time.Duration, reload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	if debounce <= 0 {
		return nil, errors.New("tagstore: watch debounce must be positive")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dirs:     append([]string(nil), dirs...),
		debounce: debounce,
		reload:   reload,
		clock:    clock.New(),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start 加入监视目录并启动事件循环
//
// 不存在的数据包目录被跳过。
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.started {
		return nil
	}

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			return err
		}
	}

	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	w.started = true
	w.wg.Add(1)
	go w.loop()

	logger.Debug("开始监视数据包", "dirs", len(w.dirs))
	return nil
}

// addTree 递归加入目录
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("数据包监视出错", "error", err)
		}
	}
}

// handle 处理单个文件系统事件
func (w *Watcher) handle(evt fsnotify.Event) {
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return
	}

	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				logger.Warn("监视新目录失败", "dir", evt.Name, "error", err)
			}
			w.schedule()
			return
		}
	}

	if isTagFile(evt.Name) || evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		w.schedule()
	}
}

// schedule 在合并窗口结束后触发一次重新加载
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer == nil {
		w.timer = w.clock.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	ctx := w.ctx
	w.mu.Unlock()

	if err := w.reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("自动重新加载标签失败", "error", err)
	}
}

// Close 停止监视，可重复调用
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
