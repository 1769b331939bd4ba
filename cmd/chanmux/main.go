// Package main 提供 chanmux 命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-chanmux"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
)

var logger = log.Logger("chanmux/cmd")

// errUsage 参数错误，已打印用法
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}

// run 按子命令分发
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		printHelp(out)
		return errUsage
	}

	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:], out)
	case "tags":
		return runTags(ctx, args[1:], out)
	case "ping":
		return runPing(ctx, args[1:], out)
	case "version", "-version", "--version":
		printVersion(out)
		return nil
	case "help", "-h", "-help", "--help":
		printHelp(out)
		return nil
	default:
		fmt.Fprintf(out, "未知命令: %s\n\n", args[0])
		printHelp(out)
		return errUsage
	}
}

// printVersion 打印版本信息
func printVersion(out io.Writer) {
	fmt.Fprintf(out, "chanmux %s\n", chanmux.Version)
	if chanmux.GitCommit != "" {
		fmt.Fprintf(out, "  commit: %s\n", chanmux.GitCommit)
	}
	if chanmux.BuildDate != "" {
		fmt.Fprintf(out, "  built:  %s\n", chanmux.BuildDate)
	}
}

// printHelp 打印帮助信息
func printHelp(out io.Writer) {
	fmt.Fprintln(out, "chanmux - 单连接多通道复用")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "用法:")
	fmt.Fprintln(out, "  chanmux <命令> [选项]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "命令:")
	fmt.Fprintln(out, "  serve     监听 TCP 连接，提供 chanmux:echo 通道")
	fmt.Fprintln(out, "  tags      加载数据包并打印全部标签")
	fmt.Fprintln(out, "  ping      连接到 serve 节点并测量 echo 往返时间")
	fmt.Fprintln(out, "  version   显示版本信息")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "环境变量（优先级低于命令行参数）：")
	fmt.Fprintln(out, "  CHANMUX_CONFIG      配置文件路径")
	fmt.Fprintln(out, "  CHANMUX_LISTEN      监听地址")
	fmt.Fprintln(out, "  CHANMUX_PACKS       数据包目录（逗号分隔）")
	fmt.Fprintln(out, "  CHANMUX_LOG_LEVEL   日志级别")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "使用 chanmux <命令> -h 查看命令选项")
}

// newFlagSet 创建子命令参数集，用法输出到 out
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parseFlags 解析参数，-h 不视为错误
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, errUsage
	}
	return true, nil
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
