package gemini

import (
	"context"
	"fmt"
	"time"

	"subtitle-remover/common"
	"subtitle-remover/internal/encoder"
	"subtitle-remover/internal/oss"
	"subtitle-remover/internal/utils"
)

// 图片输出格式
const (
	FormatBase64 = "base64"
	FormatURL    = "url"
)

// Delivery 交付给调用方的结果，url 模式下 URL 为上传后的访问地址
type Delivery struct {
	Image encoder.EncodedPayload
	URL   string
}

// GeminiClient 在 Client 之上按配置的输出格式交付结果
type GeminiClient struct {
	client      *Client
	ossClient   oss.OSSIface
	imageFormat string
}

// NewGeminiClientFromConfig 从配置创建 Gemini 客户端
func NewGeminiClientFromConfig(cfg *common.Config) (*GeminiClient, error) {
	client, err := NewClient(Config{
		APIKey:    cfg.GenAIAPIKey,
		BaseURL:   cfg.GenAIBaseURL,
		ModelName: cfg.GenAIEditModelName,
		Timeout:   time.Duration(cfg.GenAITimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	var ossClient oss.OSSIface
	if cfg.GenAIImageFormat == FormatURL {
		ossClient, err = oss.NewOSSClientFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create OSS client: %w", err)
		}
	}

	return NewGeminiClient(client, cfg.GenAIImageFormat, ossClient), nil
}

// NewGeminiClient 组装客户端；imageFormat 为 url 时 ossClient 不能为空
func NewGeminiClient(client *Client, imageFormat string, ossClient oss.OSSIface) *GeminiClient {
	if imageFormat == "" {
		imageFormat = FormatBase64
	}
	return &GeminiClient{
		client:      client,
		ossClient:   ossClient,
		imageFormat: imageFormat,
	}
}

// RemoveSubtitles 实现 SubtitleRemover 接口
func (g *GeminiClient) RemoveSubtitles(ctx context.Context, res encoder.ImageResource) (*Delivery, error) {
	edited, err := g.client.EditImage(ctx, res)
	if err != nil {
		return nil, err
	}

	delivery := &Delivery{Image: edited}
	if g.imageFormat != FormatURL {
		return delivery, nil
	}

	if g.ossClient == nil {
		return nil, fmt.Errorf("OSS is not configured but image format is set to 'url'")
	}

	data, err := edited.Bytes()
	if err != nil {
		return nil, err
	}
	key := utils.GenerateImagePath(time.Now()) + utils.GenerateImageFileName(edited.MediaType)

	common.WithFields(map[string]interface{}{
		"key":  key,
		"size": len(data),
	}).Info("Uploading cleaned image to OSS")

	url, err := g.ossClient.Upload(ctx, key, data, edited.MediaType)
	if err != nil {
		common.WithError(err).WithField("key", key).Error("Failed to upload cleaned image to OSS")
		return nil, fmt.Errorf("failed to upload image to OSS: %w", err)
	}
	delivery.URL = url
	return delivery, nil
}

// Close 关闭客户端（genai.Client 不需要显式关闭）
func (g *GeminiClient) Close() error {
	return nil
}

var _ SubtitleRemover = (*GeminiClient)(nil)
