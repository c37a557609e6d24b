// Package store provides the durable key-value string store that keeps the last
// submitted transaction hash across restarts.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store 定义持久化 KV 接口 (值均为字符串)
type Store interface {
	// Get 读取 key, 不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set 写入 key, 覆盖旧值
	Set(ctx context.Context, key, value string) error
	// Close 释放底层连接或文件句柄
	Close() error
}
