package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"subtitle-remover/common"
	"subtitle-remover/internal/encoder"

	"google.golang.org/genai"
)

// 默认请求超时时间
const defaultGenAITimeout = 60 * time.Second

// 模型没有标注 MIME 类型时，结果按 PNG 处理
const defaultResultMediaType = "image/png"

// Client Gemini 图片编辑客户端，不保存任何请求之间的状态
type Client struct {
	generator ContentGenerator
	apiKey    string
	model     string
	timeout   time.Duration
}

// Config Gemini 客户端配置
type Config struct {
	APIKey    string        // API Key，为空时每次调用都返回 ErrMissingCredential
	BaseURL   string        // 自定义 Base URL，如果为空则使用默认值
	ModelName string        // 模型名称，默认 gemini-2.5-flash-image
	Timeout   time.Duration // 单次请求超时时间

	// Generator 可选，设置后不再创建 genai.Client
	Generator ContentGenerator
}

// NewClient 创建新的 Gemini 客户端
func NewClient(cfg Config) (*Client, error) {
	model := cfg.ModelName
	if model == "" {
		model = common.DefaultEditModelName
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenAITimeout
	}

	generator := cfg.Generator
	if generator == nil && cfg.APIKey != "" {
		clientConfig := &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if cfg.BaseURL != "" {
			clientConfig.HTTPOptions = genai.HTTPOptions{
				BaseURL: cfg.BaseURL,
			}
		}

		client, err := genai.NewClient(context.Background(), clientConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		generator = client.Models
	}

	return &Client{
		generator: generator,
		apiKey:    cfg.APIKey,
		model:     model,
		timeout:   timeout,
	}, nil
}

// EditImage 编码图片，连同固定指令发给 Gemini，返回编辑后的图片。
// 每次调用只发起一次请求，不重试，不缓存。
func (c *Client) EditImage(ctx context.Context, res encoder.ImageResource) (result encoder.EncodedPayload, err error) {
	defer func() {
		if err != nil {
			common.WithError(err).WithFields(map[string]interface{}{
				"model":     c.model,
				"file_name": res.Name,
			}).Error("Error processing image with Gemini API")
		}
	}()

	if c.apiKey == "" || c.generator == nil {
		return encoder.EncodedPayload{}, ErrMissingCredential
	}

	payload, err := encoder.Encode(res)
	if err != nil {
		return encoder.EncodedPayload{}, err
	}
	imageData, err := payload.Bytes()
	if err != nil {
		return encoder.EncodedPayload{}, err
	}

	common.WithFields(map[string]interface{}{
		"model":     c.model,
		"file_name": res.Name,
		"mime_type": payload.MediaType,
		"size":      len(imageData),
	}).Debug("Starting subtitle removal")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parts := []*genai.Part{
		{
			InlineData: &genai.Blob{
				Data:     imageData,
				MIMEType: payload.MediaType,
			},
		},
		{Text: Instruction},
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	}

	resp, err := c.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return encoder.EncodedPayload{}, c.wrapError(err)
	}

	edited, ok := extractImage(resp)
	if !ok {
		return encoder.EncodedPayload{}, &NoImageReturnedError{Text: responseText(resp)}
	}

	common.WithFields(map[string]interface{}{
		"model":     c.model,
		"file_name": res.Name,
		"mime_type": edited.MediaType,
		"preview":   truncateForLog(edited.Data, 32),
	}).Debug("Image edited successfully")

	return edited, nil
}

// generate 调用 SDK，SDK 内部的 panic 转成 ErrUnknownProcessing
func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (resp *genai.GenerateContentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			common.WithField("panic", r).Error("Gemini SDK panicked")
			resp, err = nil, ErrUnknownProcessing
		}
	}()
	return c.generator.GenerateContent(ctx, c.model, contents, config)
}

func (c *Client) wrapError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownProcessing):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &ProcessingError{Err: fmt.Errorf("%w after %s: %w", ErrTimeout, c.timeout, err)}
	case err.Error() == "":
		return ErrUnknownProcessing
	default:
		return &ProcessingError{Err: err}
	}
}

// extractImage 在第一个候选结果中查找第一个带有内联数据的 part
func extractImage(resp *genai.GenerateContentResponse) (encoder.EncodedPayload, bool) {
	for _, part := range firstCandidateParts(resp) {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mediaType := part.InlineData.MIMEType
		if mediaType == "" {
			mediaType = defaultResultMediaType
		}
		return encoder.EncodedPayload{
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(part.InlineData.Data),
		}, true
	}
	return encoder.EncodedPayload{}, false
}

// responseText 拼接第一个候选结果中的文本（跳过 thought）
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, part := range firstCandidateParts(resp) {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func firstCandidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil
	}
	return candidate.Content.Parts
}

// truncateForLog 截断长字符串用于日志，避免打印过长内容（如 base64）
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
