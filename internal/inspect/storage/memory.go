package storage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore 内存对象存储，用于测试和本地调试
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
	errs    map[string]error
	listErr map[string]error
	signErr map[string]error
	signed  int
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string][]byte),
		errs:    make(map[string]error),
		listErr: make(map[string]error),
		signErr: make(map[string]error),
	}
}

// Put 写入对象
func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

// FailFetch 令指定 key 的读取返回 err
func (m *MemoryStore) FailFetch(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[key] = err
}

// FailList 令指定前缀的列举返回 err
func (m *MemoryStore) FailList(prefix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr[prefix] = err
}

// FailSign 令指定 key 的签名返回 err
func (m *MemoryStore) FailSign(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signErr[key] = err
}

// List 按 key 字典序返回
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErr[prefix]; err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	objects := make([]ObjectInfo, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, ObjectInfo{Key: k, IsDirectory: IsDirectoryKey(k)})
	}
	return objects, nil
}

// FetchBytes 读取对象
func (m *MemoryStore) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object %s: %w", key, ErrNotFound)
	}
	return data, nil
}

// SignedURL 每次调用生成不同的 URL
func (m *MemoryStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.signErr[key]; err != nil {
		return "", err
	}
	m.signed++
	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", int(ttl.Seconds())))
	q.Set("sig", fmt.Sprintf("%d", m.signed))
	return fmt.Sprintf("memory://%s/%s?%s", m.bucket, key, q.Encode()), nil
}
