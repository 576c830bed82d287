package main

import (
	"context"
	"fmt"
	"os"

	"subtitle-remover/common"
	"subtitle-remover/internal/genai/gemini"
	"subtitle-remover/internal/i18n"
	"subtitle-remover/internal/tools"
	"subtitle-remover/internal/web"

	"github.com/mark3labs/mcp-go/server"
)

const version = "1.0.0"

// printBanner 打印配置信息（隐藏敏感信息），stdout 留给 MCP 协议
func printBanner(config *common.Config) {
	fmt.Fprintf(os.Stderr, "Subtitle remover starting...\n")
	fmt.Fprintf(os.Stderr, "GenAI Base URL: %s\n", config.GenAIBaseURL)
	fmt.Fprintf(os.Stderr, "GenAI Model: %s\n", config.GenAIEditModelName)
	fmt.Fprintf(os.Stderr, "Image Format: %s\n", config.GenAIImageFormat)
	fmt.Fprintf(os.Stderr, "API Key: %s\n", common.MaskAPIKey(config.GenAIAPIKey))
}

// serveMCP 启动 stdio MCP 服务器
func serveMCP(config *common.Config) error {
	printBanner(config)

	geminiClient, err := gemini.NewGeminiClientFromConfig(config)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer geminiClient.Close()

	s := server.NewMCPServer(
		"Subtitle Remover MCP Server",
		version,
		server.WithToolCapabilities(true),
	)

	if err := tools.RegisterSubtitleTools(s, geminiClient); err != nil {
		return fmt.Errorf("failed to register subtitle tools: %w", err)
	}

	return server.ServeStdio(s)
}

// serveHTTP 启动上传页面和 JSON API
func serveHTTP(ctx context.Context, config *common.Config, addr string) error {
	printBanner(config)

	geminiClient, err := gemini.NewGeminiClientFromConfig(config)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer geminiClient.Close()

	lang, ok := i18n.Parse(config.DefaultLang)
	if !ok {
		lang = i18n.Korean
	}

	srv := web.NewServer(geminiClient, web.Options{
		MaxUploadBytes: config.MaxUploadBytes(),
		DefaultLang:    lang,
	})
	return srv.ListenAndServe(ctx, addr)
}
