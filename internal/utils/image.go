package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"subtitle-remover/internal/encoder"

	"github.com/google/uuid"
)

// 下载图片的大小上限
const maxDownloadBytes = 20 << 20

// DownloadImage 从 URL 下载图片，返回可直接交给编码器的 ImageResource
func DownloadImage(ctx context.Context, client *http.Client, url string) (encoder.ImageResource, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return encoder.ImageResource{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return encoder.ImageResource{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return encoder.ImageResource{}, fmt.Errorf("failed to download image: status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return encoder.ImageResource{}, err
	}
	if len(data) > maxDownloadBytes {
		return encoder.ImageResource{}, fmt.Errorf("image exceeds %d bytes", maxDownloadBytes)
	}

	// Content-Type 可能带参数，例如 image/png; charset=binary
	mimeType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = InferMimeTypeFromName(url)
	}

	return encoder.ImageResource{
		Name:      FileNameFromURL(url),
		MediaType: mimeType,
		Body:      bytes.NewReader(data),
	}, nil
}

// InferMimeTypeFromName 从文件名或 URL 推断 MIME 类型（不区分大小写）
func InferMimeTypeFromName(name string) string {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch path.Ext(lower) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}
	// 默认返回 jpeg
	return "image/jpeg"
}

// FileNameFromURL 取 URL 路径的最后一段作为文件名
func FileNameFromURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, ":") {
		return ""
	}
	return name
}

// GenerateImagePath 生成对象路径：cleaned/yyyy-MM-dd/
func GenerateImagePath(now time.Time) string {
	return fmt.Sprintf("cleaned/%s/", now.Format("2006-01-02"))
}

// GenerateImageFileName 生成文件名：{uuid}.ext
func GenerateImageFileName(mimeType string) string {
	return uuid.New().String() + GetExtensionFromMimeType(mimeType)
}

// CleanedFileName 下载文件名：cleaned-<原文件名>，原文件名为空时使用 image.png
func CleanedFileName(original string) string {
	original = path.Base(strings.ReplaceAll(original, "\\", "/"))
	if original == "" || original == "." || original == "/" {
		original = "image.png"
	}
	return "cleaned-" + original
}

// GetExtensionFromMimeType 根据 MIME 类型获取文件扩展名（不区分大小写）
func GetExtensionFromMimeType(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".png"
	}
}
