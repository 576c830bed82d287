package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"subtitle-remover/common"
	"subtitle-remover/internal/encoder"
	"subtitle-remover/internal/genai/gemini"
	"subtitle-remover/internal/utils"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const removeSubtitlesToolName = "remove_subtitles"

// RegisterSubtitleTools 注册去字幕的 MCP tool
func RegisterSubtitleTools(s *server.MCPServer, remover gemini.SubtitleRemover) error {
	if remover == nil {
		return fmt.Errorf("subtitle remover is required")
	}

	removeTool := mcp.NewTool(
		removeSubtitlesToolName,
		mcp.WithDescription("Remove overlaid text, subtitles, watermarks and banners from an image using Gemini AI. Faces and backgrounds hidden by the text are reconstructed. Returns the cleaned image, or its URL when the server stores results in OSS."),
		mcp.WithString("image",
			mcp.Required(),
			mcp.Description("Data URI (data:image/png;base64,...) or http(s) URL of the image to clean"),
		),
		mcp.WithString("file_name",
			mcp.Description("Optional original file name, used for the suggested download name"),
		),
	)

	s.AddTool(removeTool, removeSubtitlesHandler(remover, nil))
	return nil
}

func removeSubtitlesHandler(remover gemini.SubtitleRemover, httpClient *http.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		image, err := req.RequireString("image")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("image parameter is required: %v", err)), nil
		}

		res, err := resolveImage(ctx, httpClient, image, req.GetString("file_name", ""))
		if err != nil {
			common.WithError(err).Warn("remove_subtitles: invalid image input")
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !encoder.IsImageMediaType(res.MediaType) {
			return mcp.NewToolResultError("Please upload a valid image file (PNG, JPG, etc.)."), nil
		}

		common.WithFields(map[string]interface{}{
			"file_name": res.Name,
			"mime_type": res.MediaType,
		}).Info("remove_subtitles: processing image")

		delivery, err := remover.RemoveSubtitles(ctx, res)
		result := gemini.ResultFromDelivery(delivery, err)
		if !result.Succeeded() {
			return mcp.NewToolResultError(result.Error), nil
		}

		fileName := utils.CleanedFileName(res.Name)
		if result.URL != "" {
			return mcp.NewToolResultText(fmt.Sprintf("Cleaned image (%s): %s", fileName, result.URL)), nil
		}
		return mcp.NewToolResultImage(fmt.Sprintf("Cleaned image: %s", fileName), result.Image.Data, result.Image.MediaType), nil
	}
}

// resolveImage 把 data URI 或 URL 转成 ImageResource
func resolveImage(ctx context.Context, httpClient *http.Client, image, fileName string) (encoder.ImageResource, error) {
	image = strings.TrimSpace(image)
	switch {
	case strings.HasPrefix(image, "data:"):
		payload, err := encoder.ParseDataURI(image)
		if err != nil {
			return encoder.ImageResource{}, err
		}
		data, err := payload.Bytes()
		if err != nil {
			return encoder.ImageResource{}, err
		}
		return encoder.ImageResource{
			Name:      fileName,
			MediaType: payload.MediaType,
			Body:      bytes.NewReader(data),
		}, nil
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		res, err := utils.DownloadImage(ctx, httpClient, image)
		if err != nil {
			return encoder.ImageResource{}, fmt.Errorf("failed to download image: %w", err)
		}
		if fileName != "" {
			res.Name = fileName
		}
		return res, nil
	default:
		return encoder.ImageResource{}, fmt.Errorf("image must be a data URI or an http(s) URL")
	}
}
