package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
	"github.com/dep2p/go-chanmux/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Params 指标模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result 指标模块输出
type Result struct {
	fx.Out

	Registry *prometheus.Registry
	Metrics  *Metrics
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideMetrics),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideMetrics 提供指标注册表与指标集合
//
// 未启用指标时 Metrics 为 nil，记录方法全部为空操作。
func ProvideMetrics(p Params) (Result, error) {
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}

	reg := prometheus.NewRegistry()
	if !cfg.Enable {
		return Result{Registry: reg}, nil
	}

	m, err := New(reg, cfg.Namespace)
	if err != nil {
		return Result{}, err
	}
	return Result{Registry: reg, Metrics: m}, nil
}

type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Registry   *prometheus.Registry
	UnifiedCfg *config.Config `optional:"true"`
}

// registerLifecycle 配置了监听地址时暴露 /metrics
func registerLifecycle(input lifecycleInput) {
	if input.UnifiedCfg == nil || !input.UnifiedCfg.Metrics.Enable || input.UnifiedCfg.Metrics.ListenAddr == "" {
		return
	}
	addr := input.UnifiedCfg.Metrics.ListenAddr

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(input.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("指标服务异常退出", "addr", addr, "error", err)
				}
			}()
			logger.Info("指标服务已启动", "addr", ln.Addr().String())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
