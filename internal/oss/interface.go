package oss

import (
	"context"
)

// OSSIface 结果图片的对象存储，只写不读
type OSSIface interface {
	// Upload 上传对象，返回公开访问 URL
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}
