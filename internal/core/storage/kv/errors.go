package kv

import "errors"

// ErrCorrupted 存储的值格式不正确
var ErrCorrupted = errors.New("kv: value corrupted")
