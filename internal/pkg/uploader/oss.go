package uploader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"wellness_shop/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// Uploader 对象存储上传接口，按对象名写入指定桶并返回公开 URL
type Uploader interface {
	Upload(ctx context.Context, bucket, objectName string, r io.Reader, contentType string) (string, error)
}

type AliyunOSSUploader struct {
	client  *oss.Client
	config  config.OSSConfig
	mu      sync.Mutex
	buckets map[string]*oss.Bucket
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		client:  client,
		config:  cfg,
		buckets: make(map[string]*oss.Bucket),
	}, nil
}

func (u *AliyunOSSUploader) bucket(name string) (*oss.Bucket, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if b, ok := u.buckets[name]; ok {
		return b, nil
	}
	b, err := u.client.Bucket(name)
	if err != nil {
		return nil, err
	}
	u.buckets[name] = b
	return b, nil
}

// Upload 单次上传，不做分片和断点续传
func (u *AliyunOSSUploader) Upload(ctx context.Context, bucketName, objectName string, r io.Reader, contentType string) (string, error) {
	b, err := u.bucket(bucketName)
	if err != nil {
		return "", err
	}

	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}

	if err := b.PutObject(objectName, r, opts...); err != nil {
		return "", err
	}

	return u.PublicURL(bucketName, objectName), nil
}

// PublicURL 桶为 public-read 或走 CDN，直接拼接公开地址
func (u *AliyunOSSUploader) PublicURL(bucketName, objectName string) string {
	if u.config.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.config.PublicBaseURL, "/"), bucketName, objectName)
	}
	return fmt.Sprintf("https://%s.%s/%s", bucketName, u.config.Endpoint, objectName)
}

var _ Uploader = (*AliyunOSSUploader)(nil)
