// Package storage 对象存储抽象：列举、读取、签名URL
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// ObjectInfo 列举结果中的对象描述
type ObjectInfo struct {
	Key         string
	IsDirectory bool
}

// ObjectStore 检测图片与坐标文件所在的对象存储
type ObjectStore interface {
	// List 列举 key 以 prefix 开头的全部对象
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// FetchBytes 读取对象内容，对象不存在时返回 ErrNotFound
	FetchBytes(ctx context.Context, key string) ([]byte, error)
	// SignedURL 生成限时访问URL，过期后需要重新列举获取
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
