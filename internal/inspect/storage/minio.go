package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOOptions MinIO 连接参数
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIOStore 基于 MinIO（S3 兼容）的对象存储
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore 创建 MinIO 存储
func NewMinIOStore(opts MinIOOptions) (*MinIOStore, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("minio endpoint and bucket are required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStore{client: client, bucket: opts.Bucket}, nil
}

// List 递归列举前缀下全部对象
func (s *MinIOStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, obj.Err)
		}
		objects = append(objects, ObjectInfo{Key: obj.Key, IsDirectory: IsDirectoryKey(obj.Key)})
	}
	return objects, nil
}

// FetchBytes 读取对象全部内容
func (s *MinIOStore) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapErr(key, err)
	}
	defer object.Close()

	// GetObject 是惰性的，对象不存在的错误在首次读取时才返回
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, s.wrapErr(key, err)
	}
	return data, nil
}

// SignedURL 生成预签名 GET URL
func (s *MinIOStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *MinIOStore) wrapErr(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("get object %s: %w", key, ErrNotFound)
	}
	return fmt.Errorf("get object %s: %w", key, err)
}
