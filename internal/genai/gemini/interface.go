package gemini

import (
	"context"

	"subtitle-remover/internal/encoder"

	"google.golang.org/genai"
)

// ContentGenerator 对应 genai.Models 的 GenerateContent，测试中可替换
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// SubtitleRemover 去字幕能力，MCP tools、HTTP 服务和命令行共用
type SubtitleRemover interface {
	RemoveSubtitles(ctx context.Context, res encoder.ImageResource) (*Delivery, error)
}
