package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chanmux/config"
)

// Params 存储模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result 存储模块输出
type Result struct {
	fx.Out

	DB     *DB
	Config Config
}

// Module 返回 Fx 模块
//
// 生命周期:
//   - OnStart: 启动垃圾回收
//   - OnStop: 关闭数据库
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideStorage),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideStorage 打开数据库
func ProvideStorage(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	db, err := Open(cfg)
	if err != nil {
		logger.Error("打开存储失败", "path", cfg.Path, "error", err)
		return Result{}, err
	}
	return Result{DB: db, Config: cfg}, nil
}

func registerLifecycle(lc fx.Lifecycle, db *DB) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return db.Start()
		},
		OnStop: func(_ context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("关闭存储失败", "error", err)
				return err
			}
			logger.Info("存储已关闭")
			return nil
		},
	})
}
