// Package upload 封装对象存储：本地磁盘实现与带退避的重试装饰器。
package upload

import (
	"context"
	"errors"
	"mime/multipart"
	"time"
)

var (
	// ErrUnsupportedType 在上传内容不是图片时返回
	ErrUnsupportedType = errors.New("only image uploads are allowed")
	// ErrEmptyURL 在底层存储成功返回却没有可用 URL 时返回
	ErrEmptyURL = errors.New("upload returned no resolvable url")
)

// Uploader 将一个二进制文件写入对象存储并返回可解析的 URL。
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Retry 包装任意 Uploader，对瞬时失败做有界重试。
// 上传是幂等操作（每次尝试生成新文件名），写库操作不经过它。
type Retry struct {
	Next     Uploader
	Attempts int
	Backoff  time.Duration
}

// NewRetry 构造默认的三次尝试、指数退避的重试包装。
func NewRetry(next Uploader) *Retry {
	return &Retry{Next: next, Attempts: 3, Backoff: 200 * time.Millisecond}
}

// Upload 依次尝试上传，空 URL 视为失败；ctx 取消立即停止。
func (r *Retry) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	backoff := r.Backoff
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		url, err := r.Next.Upload(ctx, file)
		if err == nil && url == "" {
			err = ErrEmptyURL
		}
		if err == nil {
			return url, nil
		}
		lastErr = err

		// 内容类型错误不会因重试而改变
		if errors.Is(err, ErrUnsupportedType) {
			return "", err
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return "", lastErr
}
