package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"subtitle-remover/common"
	"subtitle-remover/internal/encoder"
	"subtitle-remover/internal/genai/gemini"
	"subtitle-remover/internal/utils"

	"github.com/spf13/cobra"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var config *common.Config

	rootCmd := &cobra.Command{
		Use:           "subtitle-remover",
		Short:         "Remove subtitles and overlaid text from images with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			config = cfg
			return nil
		},
		// 不带子命令时以 MCP stdio 模式运行
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMCP(config)
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Serve the remove_subtitles tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMCP(config)
		},
	})

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if addr == "" {
				addr = config.GetServerAddr()
			}
			return serveHTTP(ctx, config, addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to SERVER_ADDRESS:SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)

	var output string
	removeCmd := &cobra.Command{
		Use:   "remove <image>",
		Short: "Remove subtitles from one image file and save the cleaned copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			geminiClient, err := gemini.NewGeminiClientFromConfig(config)
			if err != nil {
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			defer geminiClient.Close()
			return runRemove(cmd.Context(), geminiClient, args[0], output, cmd.OutOrStdout())
		},
	}
	removeCmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults to cleaned-<name> next to the input)")
	rootCmd.AddCommand(removeCmd)

	return rootCmd
}

// runRemove 处理单个文件，结果写到 output；url 模式下同时打印访问地址
func runRemove(ctx context.Context, remover gemini.SubtitleRemover, input, output string, stdout io.Writer) error {
	f, err := os.Open(input)
	if err != nil {
		return &encoder.ReadError{Name: input, Err: err}
	}
	defer f.Close()

	mediaType, err := sniffMediaType(f, input)
	if err != nil {
		return &encoder.ReadError{Name: input, Err: err}
	}
	if !encoder.IsImageMediaType(mediaType) {
		return fmt.Errorf("%s: please upload a valid image file (PNG, JPG, etc.)", input)
	}

	delivery, err := remover.RemoveSubtitles(ctx, encoder.ImageResource{
		Name:      filepath.Base(input),
		MediaType: mediaType,
		Body:      f,
	})
	result := gemini.ResultFromDelivery(delivery, err)
	if !result.Succeeded() {
		return errors.New(result.Error)
	}

	data, err := result.Image.Bytes()
	if err != nil {
		return err
	}
	if output == "" {
		output = filepath.Join(filepath.Dir(input), utils.CleanedFileName(filepath.Base(input)))
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(stdout, "Cleaned image written to %s\n", output)
	if result.URL != "" {
		fmt.Fprintf(stdout, "Cleaned image URL: %s\n", result.URL)
	}
	return nil
}

// sniffMediaType 根据文件内容判断 MIME 类型，无法识别时按扩展名推断
func sniffMediaType(f *os.File, name string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mediaType := http.DetectContentType(head[:n])
	if mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			mediaType = byExt
		}
	}
	return mediaType, nil
}
