// Package chanmux 提供在单条连接上复用命名通道的库
//
// 每个连接对应一个会话（Session），会话维护本地通道处理器表，
// 通过保留的控制通道向对端声明本地支持的通道，并把入站帧按通道分发。
// 另外提供基于数据包文件的标签（通道分组）加载与派生视图缓存。
//
// # 核心概念
//
//   - Node: 库的入口，装配通道管理器、标签存储、指标与存储
//   - Session: 单个连接上的通道注册表与分发器
//   - Tag: 由标签存储的快照派生的只读通道集合
//
// # 快速开始
//
//	node, err := chanmux.New(
//	    chanmux.WithPacks("./datapack"),
//	    chanmux.WithInMemoryStorage(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	// 所有会话握手时都会声明的通道
//	_ = node.Channels().Defaults().Register(echoID, echoHandler)
//
//	// 接受 TCP 连接并为每个连接创建会话
//	_ = node.Serve(ctx)
//
// # 文件组织
//
//   - chanmux.go: 版本信息
//   - node.go: Node 结构与访问器
//   - node_lifecycle.go: Start / Stop / Close
//   - node_serve.go: 连接服务与拨号
//   - options.go: 配置选项
//   - fx.go: Fx 模块装配
//   - errors.go: 公共错误
package chanmux
