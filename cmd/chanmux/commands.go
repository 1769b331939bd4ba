package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dep2p/go-chanmux"
	"github.com/dep2p/go-chanmux/internal/core/channel"
	"github.com/dep2p/go-chanmux/internal/core/eventbus"
	"github.com/dep2p/go-chanmux/internal/core/transport/stream"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// echoChannel serve 节点提供的回显通道
var echoChannel = types.MustParseIdentifier("chanmux:echo")

// ============================================================================
//                              公共参数
// ============================================================================

// commonFlags 各子命令共用的参数
type commonFlags struct {
	configFile string
	packs      string
	logLevel   string
	codec      string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "配置文件路径")
	fs.StringVar(&c.packs, "packs", "", "数据包目录，逗号分隔，后面的覆盖前面的")
	fs.StringVar(&c.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	fs.StringVar(&c.codec, "codec", "", "控制帧编码 (nul/proto)")
}

// options 构建节点选项
//
// 配置优先级（从高到低）：命令行参数，环境变量，配置文件，默认值。
func (c *commonFlags) options(fs *flag.FlagSet) []chanmux.Option {
	var opts []chanmux.Option

	if path := flagOrEnv(fs, "config", c.configFile, envConfig); path != "" {
		opts = append(opts, chanmux.WithConfigFile(path))
	}
	if packs := splitAndTrim(flagOrEnv(fs, "packs", c.packs, envPacks), ","); len(packs) > 0 {
		opts = append(opts, chanmux.WithPacks(packs...))
	}
	if level := flagOrEnv(fs, "log-level", c.logLevel, envLogLevel); level != "" {
		opts = append(opts, chanmux.WithLogLevel(level))
	}
	if c.codec != "" {
		opts = append(opts, chanmux.WithControlCodec(c.codec))
	}
	return opts
}

// ============================================================================
//                              serve
// ============================================================================

func runServe(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("serve", out)
	var common commonFlags
	common.register(fs)
	listen := fs.String("listen", "", "TCP 监听地址（默认取配置）")
	dataDir := fs.String("data-dir", "", "数据目录（默认: ./data）")
	inMemory := fs.Bool("in-memory", false, "仅使用内存存储")
	watch := fs.Duration("watch", 0, "数据包热加载防抖间隔，0 表示不监视")
	metricsAddr := fs.String("metrics-addr", "", "/metrics 监听地址")

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	opts := common.options(fs)
	if addr := flagOrEnv(fs, "listen", *listen, envListen); addr != "" {
		opts = append(opts, chanmux.WithListenAddr(addr))
	}
	if *dataDir != "" {
		opts = append(opts, chanmux.WithDataDir(*dataDir))
	}
	if *inMemory {
		opts = append(opts, chanmux.WithInMemoryStorage())
	}
	if *watch > 0 {
		opts = append(opts, chanmux.WithWatch(*watch))
	}
	if *metricsAddr != "" {
		opts = append(opts, chanmux.WithMetrics(true, *metricsAddr))
	}

	node, err := chanmux.New(opts...)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	defer func() { _ = node.Close() }()

	if err := node.Channels().Defaults().Register(echoChannel, pkgif.ChannelHandlerFunc(
		func(sender pkgif.PacketSender, payload []byte) {
			if err := sender.Send(echoChannel, payload); err != nil {
				logger.Debug("回显失败", "session", sender.ID().ShortString(), "error", err)
			}
		})); err != nil {
		return err
	}

	node.Events().SessionStarted.Register(func(evt types.EvtSessionStarted) error {
		logger.Info("会话开始", "session", evt.Session.ShortString())
		return nil
	})
	node.Events().SessionEnded.Register(func(evt types.EvtSessionEnded) error {
		logger.Info("会话结束", "session", evt.Session.ShortString(), "handshaken", evt.Handshaken)
		return nil
	})

	logger.Info("启动 chanmux 节点", "version", chanmux.Version, "commit", chanmux.GitCommit)
	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	if err := watchPeerChannels(ctx, node); err != nil {
		return err
	}

	l, err := stream.Listen(ctx, stream.ConfigFromUnified(node.Config()))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "监听 %s，标签 %d 个，按 Ctrl+C 退出\n", l.Addr(), node.Tags().Snapshot().Len())

	if err := node.ServeListener(ctx, l); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(out, "正在关闭节点...")
	return nil
}

// watchPeerChannels 通过事件总线记录对端的通道声明
func watchPeerChannels(ctx context.Context, node *chanmux.Node) error {
	if _, err := eventbus.Watch(ctx, node.EventBus(), func(evt types.EvtChannelsRegistered) {
		logger.Info("对端声明通道", "session", evt.Session.ShortString(), "channels", evt.Channels)
	}); err != nil {
		return err
	}
	_, err := eventbus.Watch(ctx, node.EventBus(), func(evt types.EvtChannelsUnregistered) {
		logger.Info("对端注销通道", "session", evt.Session.ShortString(), "channels", evt.Channels)
	})
	return err
}

// ============================================================================
//                              tags
// ============================================================================

func runTags(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("tags", out)
	var common commonFlags
	common.register(fs)
	kind := fs.String("kind", "", "标签元素种类（默认取配置）")

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	opts := append(common.options(fs),
		chanmux.WithTagPersist(false),
		chanmux.WithMetrics(false, ""),
	)
	if *kind != "" {
		opts = append(opts, chanmux.WithTagKind(*kind))
	}

	node, err := chanmux.New(opts...)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	defer func() { _ = node.Close() }()

	if len(node.Config().Tag.Packs) == 0 {
		fmt.Fprintln(out, "至少需要一个数据包目录 (-packs)")
		return errUsage
	}
	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("加载失败: %w", err)
	}

	snap := node.Tags().Snapshot()
	if snap.Len() == 0 {
		fmt.Fprintln(out, "未找到标签")
		return nil
	}
	for _, id := range snap.IDs() {
		values := snap.Tag(id)
		fmt.Fprintf(out, "#%s (%d)\n", id, len(values))
		for _, v := range values {
			fmt.Fprintf(out, "  %s\n", v)
		}
	}
	return nil
}

// ============================================================================
//                              ping
// ============================================================================

func runPing(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("ping", out)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "127.0.0.1:25580", "serve 节点地址")
	message := fs.String("message", "ping", "回显内容")
	count := fs.Int("count", 1, "发送次数")
	timeout := fs.Duration("timeout", 5*time.Second, "单次等待超时")

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *count <= 0 {
		fmt.Fprintln(out, "-count 必须大于 0")
		return errUsage
	}

	opts := append(common.options(fs),
		chanmux.WithTagPersist(false),
		chanmux.WithMetrics(false, ""),
	)
	node, err := chanmux.Start(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = node.Close() }()

	replies := make(chan []byte, 1)
	dialCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	s, err := node.Connect(dialCtx, *addr, func(s *channel.Session) error {
		return s.RegisterChannel(echoChannel, pkgif.ChannelHandlerFunc(
			func(_ pkgif.PacketSender, payload []byte) {
				select {
				case replies <- payload:
				default:
				}
			}))
	})
	if err != nil {
		return fmt.Errorf("连接失败: %w", err)
	}

	for i := 0; i < *count; i++ {
		start := time.Now()
		if err := s.Send(echoChannel, []byte(*message)); err != nil {
			return fmt.Errorf("发送失败: %w", err)
		}
		select {
		case reply := <-replies:
			fmt.Fprintf(out, "来自 %s 的回复: %q 时间=%s\n", *addr, reply, time.Since(start).Round(time.Microsecond))
		case <-time.After(*timeout):
			return fmt.Errorf("等待回复超时")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
