package chanmux

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置，nil 表示默认配置
	base *config.Config

	// 配置文件路径，优先于 base
	configFile string

	// 覆盖项，按调用顺序应用
	overrides []func(*config.Config)

	// 日志输出，nil 表示 stderr
	logOutput io.Writer

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toConfig 合并为统一配置
func (o *options) toConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	switch {
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		cfg = loaded
	case o.base != nil:
		copied := *o.base
		copied.Tag.Packs = append([]string(nil), o.base.Tag.Packs...)
		cfg = &copied
	}

	for _, apply := range o.overrides {
		apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (o *options) override(fn func(*config.Config)) {
	o.overrides = append(o.overrides, fn)
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置来源
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用给定配置作为基础，调用方之后的修改不影响节点
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		o.base = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载基础配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return fmt.Errorf("config file path is empty")
		}
		o.configFile = path
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              通道
// ════════════════════════════════════════════════════════════════════════════

// WithControlCodec 设置控制帧编码，"nul" 或 "proto"
func WithControlCodec(name string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Channel.ControlCodec = name })
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              标签
// ════════════════════════════════════════════════════════════════════════════

// WithPacks 设置数据包目录，后面的覆盖前面的
func WithPacks(dirs ...string) Option {
	return func(o *options) error {
		packs := append([]string(nil), dirs...)
		o.override(func(c *config.Config) { c.Tag.Packs = packs })
		return nil
	}
}

// WithTagKind 设置标签元素种类（数据包内的子目录名）
func WithTagKind(kind string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Tag.Kind = kind })
		return nil
	}
}

// WithWatch 启用数据包热加载
func WithWatch(debounce time.Duration) Option {
	return func(o *options) error {
		if debounce <= 0 {
			return fmt.Errorf("watch debounce must be positive")
		}
		o.override(func(c *config.Config) {
			c.Tag.Watch = true
			c.Tag.WatchDebounce = config.Duration(debounce)
		})
		return nil
	}
}

// WithTagPersist 设置是否持久化标签定义
func WithTagPersist(enable bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Tag.Persist = enable })
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              存储与传输
// ════════════════════════════════════════════════════════════════════════════

// WithDataDir 设置数据目录
func WithDataDir(dir string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Storage.DataDir = dir
			c.Storage.InMemory = false
		})
		return nil
	}
}

// WithInMemoryStorage 使用内存存储
func WithInMemoryStorage() Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Storage.InMemory = true })
		return nil
	}
}

// WithListenAddr 设置 TCP 监听地址
func WithListenAddr(addr string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Transport.ListenAddr = addr })
		return nil
	}
}

// WithMaxFrameSize 设置单帧上限
func WithMaxFrameSize(n int) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Transport.MaxFrameSize = n })
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              观测
// ════════════════════════════════════════════════════════════════════════════

// WithLogLevel 设置日志级别
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) { c.Log.Level = level })
		return nil
	}
}

// WithLogOutput 设置日志输出目标
func WithLogOutput(w io.Writer) Option {
	return func(o *options) error {
		o.logOutput = w
		return nil
	}
}

// WithMetrics 设置是否采集指标以及 /metrics 监听地址（空表示不暴露）
func WithMetrics(enable bool, listenAddr string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Metrics.Enable = enable
			c.Metrics.ListenAddr = listenAddr
		})
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
