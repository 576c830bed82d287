package oss

import (
	"fmt"

	"subtitle-remover/common"
)

// NewOSSClientFromConfig 从配置创建 OSS 客户端
func NewOSSClientFromConfig(cfg *common.Config) (OSSIface, error) {
	if cfg.OSSBucket == "" {
		return nil, fmt.Errorf("OSS bucket is required")
	}
	return NewS3Client(S3Config{
		Endpoint:  cfg.OSSEndpoint,
		Region:    cfg.OSSRegion,
		AccessKey: cfg.OSSAccessKey,
		SecretKey: cfg.OSSSecretKey,
		Bucket:    cfg.OSSBucket,
	})
}
