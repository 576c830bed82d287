package gemini

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential 未配置 API Key，在任何网络请求之前返回
	ErrMissingCredential = errors.New("API key not set")
	// ErrTimeout 请求超过配置的超时时间
	ErrTimeout = errors.New("image editing request timed out")
	// ErrUnknownProcessing 无法识别的失败
	ErrUnknownProcessing = errors.New("an unknown error occurred while processing the image")
)

// 模型没有返回任何文本时使用的占位
const noTextPlaceholder = "N/A"

// NoImageReturnedError 模型响应中没有图片，Text 为模型返回的文字说明（例如内容策略拒绝）
type NoImageReturnedError struct {
	Text string
}

func (e *NoImageReturnedError) Error() string {
	text := e.Text
	if text == "" {
		text = noTextPlaceholder
	}
	return fmt.Sprintf("AI did not return an image. Response text: \"%s\"", text)
}

// ProcessingError 调用过程中的传输错误或其他异常
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to process image: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
