// Package storage 提供基于 BadgerDB 的持久化存储
//
// 所有组件共享一个 DB 实例，通过 kv.Store 的键前缀隔离数据：
//
//	前缀        | 模块       | 说明
//	------------|------------|------------------
//	t/<kind>/d/ | tagstore   | 合并后的标签定义
//	t/<kind>/m/ | tagstore   | 版本号等元数据
//
// 使用 Fx 依赖注入：
//
//	app := fx.New(
//	    storage.Module(),
//	    // ... 其他模块
//	)
//
// 手动创建：
//
//	db, err := storage.Open(storage.InMemoryConfig())
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	tags := kv.New(db, []byte("t/"))
//
// 所有公开的类型和方法都是线程安全的。
package storage
