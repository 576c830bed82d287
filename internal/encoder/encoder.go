package encoder

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedEncoding data URI 缺少头部或数据部分
	ErrMalformedEncoding = errors.New("invalid file format for base64 conversion")
	// ErrMissingMediaType 无法从 data URI 头部解析出 MIME 类型
	ErrMissingMediaType = errors.New("could not determine MIME type")
)

// ReadError 读取图片内容失败
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to read image: %v", e.Err)
	}
	return fmt.Sprintf("failed to read image %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ImageResource 用户提交的原始图片，捕获后不再修改
type ImageResource struct {
	Name      string
	MediaType string
	Body      io.Reader
}

// EncodedPayload 传输用的图片表示，Data 为不带前缀的 base64 文本
type EncodedPayload struct {
	MediaType string `json:"mime_type"`
	Data      string `json:"data"`
}

// DataURI 返回 data:<type>;base64,<data> 形式的字符串
func (p EncodedPayload) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", p.MediaType, p.Data)
}

// Bytes 解码 base64 数据
func (p EncodedPayload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return data, nil
}

// Encode 读取完整的图片内容，转成 data URI 后再拆分出 MIME 类型和 base64 数据。
func Encode(res ImageResource) (EncodedPayload, error) {
	if res.Body == nil {
		return EncodedPayload{}, &ReadError{Name: res.Name, Err: errors.New("no image content")}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return EncodedPayload{}, &ReadError{Name: res.Name, Err: err}
	}
	return ParseDataURI(toDataURI(res.MediaType, data))
}

// EncodeBytes 对内存中的图片数据做同样的转换
func EncodeBytes(mediaType string, data []byte) (EncodedPayload, error) {
	return ParseDataURI(toDataURI(mediaType, data))
}

func toDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI 按第一个逗号拆分 data URI，头部中 ':' 与 ';' 之间的部分为 MIME 类型。
func ParseDataURI(uri string) (EncodedPayload, error) {
	header, data, _ := strings.Cut(uri, ",")
	if header == "" || data == "" {
		return EncodedPayload{}, ErrMalformedEncoding
	}

	_, afterColon, found := strings.Cut(header, ":")
	if !found {
		return EncodedPayload{}, ErrMissingMediaType
	}
	mediaType, _, _ := strings.Cut(afterColon, ";")
	if mediaType == "" {
		return EncodedPayload{}, ErrMissingMediaType
	}

	return EncodedPayload{MediaType: mediaType, Data: data}, nil
}

// IsImageMediaType 判断 MIME 类型是否为图片，展示层在调用前用它拒绝非图片文件
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
