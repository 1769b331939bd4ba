// Package kv 在 storage.DB 之上提供带前缀隔离的键值存储
//
//	tags := kv.New(db, []byte("t/channels/"))
//	tags.Put([]byte("m/generation"), v) // 实际键: t/channels/m/generation
package kv
