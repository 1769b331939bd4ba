// Package stream 在单条有序字节流上承载通道帧
//
// 每个帧的线路格式：
//
//	uvarint(len(id)) id uvarint(len(payload)) payload
//
// id 为 "namespace:path" 形式的通道标识符文本。
//
// # 使用示例
//
//	conn := stream.NewConn(rwc, stream.DefaultConfig())
//	session, _ := mgr.NewSession(conn, executor.NewSerial("peer"))
//	go stream.Serve(ctx, conn, session)
//
// # 并发安全
//
// Conn.Send 可以被多个 goroutine 同时调用，帧不会交错。
// Conn.ReadFrame 只能由一个 goroutine 调用，通常就是 Serve。
//
// 架构层：Core Layer
package stream
