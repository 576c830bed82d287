package tools

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"subtitle-remover/internal/encoder"
	"subtitle-remover/internal/genai/gemini"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemover struct {
	calls    int
	res      encoder.ImageResource
	body     []byte
	delivery *gemini.Delivery
	err      error
}

func (f *fakeRemover) RemoveSubtitles(ctx context.Context, res encoder.ImageResource) (*gemini.Delivery, error) {
	f.calls++
	f.res = res
	f.body, _ = io.ReadAll(res.Body)
	return f.delivery, f.err
}

func callTool(t *testing.T, handler server.ToolHandlerFunc, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = removeSubtitlesToolName
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func cleanedDelivery() *gemini.Delivery {
	return &gemini.Delivery{Image: encoder.EncodedPayload{MediaType: "image/png", Data: "Y2xlYW4="}}
}

func TestRemoveSubtitlesFromDataURI(t *testing.T) {
	remover := &fakeRemover{delivery: cleanedDelivery()}
	handler := removeSubtitlesHandler(remover, nil)

	res := callTool(t, handler, map[string]interface{}{
		"image":     "data:image/jpeg;base64,cmF3",
		"file_name": "frame.jpg",
	})

	assert.False(t, res.IsError)
	require.Len(t, res.Content, 2)
	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "Y2xlYW4=", img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Contains(t, textOf(t, res), "cleaned-frame.jpg")

	assert.Equal(t, 1, remover.calls)
	assert.Equal(t, "image/jpeg", remover.res.MediaType)
	assert.Equal(t, []byte("raw"), remover.body)
}

func TestRemoveSubtitlesFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	remover := &fakeRemover{delivery: &gemini.Delivery{
		Image: encoder.EncodedPayload{MediaType: "image/png", Data: "eA=="},
		URL:   "https://media.example.com/cleaned/a.png",
	}}
	res := callTool(t, removeSubtitlesHandler(remover, srv.Client()), map[string]interface{}{
		"image": srv.URL + "/shot.png",
	})

	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "https://media.example.com/cleaned/a.png")
	assert.Contains(t, textOf(t, res), "cleaned-shot.png")
	assert.Equal(t, []byte("remote"), remover.body)
}

func TestRemoveSubtitlesInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing image", map[string]interface{}{}, "image parameter is required"},
		{"plain text", map[string]interface{}{"image": "hello"}, "data URI or an http(s) URL"},
		{"malformed data uri", map[string]interface{}{"image": "data:image/png;base64"}, "invalid file format for base64 conversion"},
		{"no media type", map[string]interface{}{"image": "data:;base64,eA=="}, "could not determine MIME type"},
		{"not an image", map[string]interface{}{"image": "data:text/plain;base64,eA=="}, "valid image file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remover := &fakeRemover{delivery: cleanedDelivery()}
			res := callTool(t, removeSubtitlesHandler(remover, nil), tt.args)

			assert.True(t, res.IsError)
			assert.Contains(t, textOf(t, res), tt.want)
			assert.Equal(t, 0, remover.calls)
		})
	}
}

func TestRemoveSubtitlesServiceError(t *testing.T) {
	remover := &fakeRemover{err: &gemini.NoImageReturnedError{Text: "Sorry, I can't process this."}}
	res := callTool(t, removeSubtitlesHandler(remover, nil), map[string]interface{}{
		"image": "data:image/png;base64,eA==",
	})

	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "Sorry, I can't process this.")
}

func TestRegisterSubtitleTools(t *testing.T) {
	s := server.NewMCPServer("test", "0.0.1", server.WithToolCapabilities(true))
	assert.NoError(t, RegisterSubtitleTools(s, &fakeRemover{}))
	assert.Error(t, RegisterSubtitleTools(s, nil))
}
