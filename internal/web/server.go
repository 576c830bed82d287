package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"subtitle-remover/common"
	"subtitle-remover/internal/encoder"
	"subtitle-remover/internal/genai/gemini"
	"subtitle-remover/internal/i18n"
	"subtitle-remover/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// multipart 头部等额外开销
const multipartOverhead = 1 << 20

// Options HTTP 前端配置
type Options struct {
	MaxUploadBytes int64
	DefaultLang    i18n.Lang
}

// Server 上传页面与去字幕 API，本身不保存任何状态
type Server struct {
	remover     gemini.SubtitleRemover
	maxUpload   int64
	defaultLang i18n.Lang
}

// NewServer 创建 HTTP 前端
func NewServer(remover gemini.SubtitleRemover, opts Options) *Server {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	lang := opts.DefaultLang
	if lang == "" {
		lang = i18n.Korean
	}
	return &Server{
		remover:     remover,
		maxUpload:   maxUpload,
		defaultLang: lang,
	}
}

// Routes 注册路由
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", handleHealth)
	r.Post("/api/remove", s.handleRemove)

	return r
}

// ListenAndServe 启动 HTTP 服务，ctx 结束时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		common.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		common.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

type indexData struct {
	Lang      i18n.Lang
	OtherLang i18n.Lang
	Theme     string
	Msg       map[string]string
	MaxUpload int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	lang := s.negotiate(r)
	other := i18n.English
	if lang == i18n.English {
		other = i18n.Korean
	}
	theme := r.URL.Query().Get("theme")
	if theme != "light" {
		theme = "dark"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{
		Lang:      lang,
		OtherLang: other,
		Theme:     theme,
		Msg:       i18n.Messages(lang),
		MaxUpload: s.maxUpload,
	}); err != nil {
		common.WithError(err).Error("Failed to render index page")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// removeResponse 在 EditResult 之外附带下载文件名
type removeResponse struct {
	gemini.EditResult
	DataURI  string `json:"data_uri,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	lang := s.negotiate(r)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, i18n.T(lang, "errorTooLarge"))
			return
		}
		writeError(w, http.StatusBadRequest, i18n.T(lang, "errorValidImage"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(lang, "errorValidImage"))
		return
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, i18n.T(lang, "errorTooLarge"))
		return
	}
	mediaType := header.Header.Get("Content-Type")
	if !encoder.IsImageMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, i18n.T(lang, "errorValidImage"))
		return
	}

	delivery, err := s.remover.RemoveSubtitles(r.Context(), encoder.ImageResource{
		Name:      header.Filename,
		MediaType: mediaType,
		Body:      file,
	})
	result := gemini.ResultFromDelivery(delivery, err)
	if !result.Succeeded() {
		writeJSON(w, statusFor(err), removeResponse{EditResult: result})
		return
	}

	writeJSON(w, http.StatusOK, removeResponse{
		EditResult: result,
		DataURI:    result.Image.DataURI(),
		Filename:   utils.CleanedFileName(header.Filename),
	})
}

func (s *Server) negotiate(r *http.Request) i18n.Lang {
	return i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), s.defaultLang)
}

// statusFor 把错误类型映射到 HTTP 状态码
func statusFor(err error) int {
	var readErr *encoder.ReadError
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, gemini.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, gemini.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, encoder.ErrMalformedEncoding),
		errors.Is(err, encoder.ErrMissingMediaType),
		errors.As(err, &readErr):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, removeResponse{EditResult: gemini.EditResult{Error: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.WithError(err).Warn("Failed to write JSON response")
	}
}

// requestLogger 用 logrus 记录每个请求
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		common.WithFields(map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("HTTP request")
	})
}
