package gemini

import "subtitle-remover/internal/encoder"

// EditResult 一次编辑的结果，Image 与 Error 有且只有一个
type EditResult struct {
	Image *encoder.EncodedPayload `json:"image,omitempty"`
	URL   string                  `json:"url,omitempty"`
	Error string                  `json:"error,omitempty"`
}

// NewEditResult 把 (payload, err) 转成 EditResult
func NewEditResult(payload encoder.EncodedPayload, err error) EditResult {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = ErrUnknownProcessing.Error()
		}
		return EditResult{Error: msg}
	}
	if payload.Data == "" {
		return EditResult{Error: ErrUnknownProcessing.Error()}
	}
	return EditResult{Image: &payload}
}

// Succeeded 是否得到了图片
func (r EditResult) Succeeded() bool {
	return r.Image != nil
}

// ResultFromDelivery 把 RemoveSubtitles 的返回值转成 EditResult
func ResultFromDelivery(d *Delivery, err error) EditResult {
	if err != nil || d == nil {
		if err == nil {
			err = ErrUnknownProcessing
		}
		return NewEditResult(encoder.EncodedPayload{}, err)
	}
	result := NewEditResult(d.Image, nil)
	if result.Succeeded() {
		result.URL = d.URL
	}
	return result
}
