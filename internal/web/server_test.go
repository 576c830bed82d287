package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"subtitle-remover/internal/encoder"
	"subtitle-remover/internal/genai/gemini"
	"subtitle-remover/internal/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemover struct {
	calls    int
	received []byte
	name     string
	delivery *gemini.Delivery
	err      error
}

func (f *fakeRemover) RemoveSubtitles(ctx context.Context, res encoder.ImageResource) (*gemini.Delivery, error) {
	f.calls++
	f.name = res.Name
	f.received, _ = io.ReadAll(res.Body)
	return f.delivery, f.err
}

func uploadRequest(t *testing.T, target, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) removeResponse {
	t.Helper()
	var out removeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRemoveSuccess(t *testing.T) {
	remover := &fakeRemover{delivery: &gemini.Delivery{
		Image: encoder.EncodedPayload{MediaType: "image/png", Data: "Y2xlYW5lZA=="},
	}}
	srv := NewServer(remover, Options{})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, uploadRequest(t, "/api/remove", "frame.png", "image/png", []byte("raw")))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Empty(t, out.Error)
	require.NotNil(t, out.Image)
	assert.Equal(t, "Y2xlYW5lZA==", out.Image.Data)
	assert.Equal(t, "data:image/png;base64,Y2xlYW5lZA==", out.DataURI)
	assert.Equal(t, "cleaned-frame.png", out.Filename)

	assert.Equal(t, 1, remover.calls)
	assert.Equal(t, "frame.png", remover.name)
	assert.Equal(t, []byte("raw"), remover.received)
}

func TestRemoveURLDelivery(t *testing.T) {
	remover := &fakeRemover{delivery: &gemini.Delivery{
		Image: encoder.EncodedPayload{MediaType: "image/png", Data: "eA=="},
		URL:   "https://media.example.com/cleaned/x.png",
	}}
	rec := httptest.NewRecorder()
	NewServer(remover, Options{}).Routes().ServeHTTP(rec, uploadRequest(t, "/api/remove", "a.png", "image/png", []byte("raw")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://media.example.com/cleaned/x.png", decode(t, rec).URL)
}

func TestRemoveRejectsNonImage(t *testing.T) {
	remover := &fakeRemover{}
	srv := NewServer(remover, Options{DefaultLang: i18n.English})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, uploadRequest(t, "/api/remove", "doc.pdf", "application/pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, i18n.T(i18n.English, "errorValidImage"), decode(t, rec).Error)
	assert.Equal(t, 0, remover.calls)
}

func TestRemoveLocalizedRejection(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(&fakeRemover{}, Options{}).Routes().ServeHTTP(rec,
		uploadRequest(t, "/api/remove?lang=ko", "doc.txt", "text/plain", []byte("hi")))

	assert.Equal(t, i18n.T(i18n.Korean, "errorValidImage"), decode(t, rec).Error)
}

func TestRemoveMissingField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/remove", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	NewServer(&fakeRemover{}, Options{}).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveTooLarge(t *testing.T) {
	remover := &fakeRemover{}
	srv := NewServer(remover, Options{MaxUploadBytes: 16, DefaultLang: i18n.English})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, uploadRequest(t, "/api/remove", "big.png", "image/png", bytes.Repeat([]byte("x"), 100)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, i18n.T(i18n.English, "errorTooLarge"), decode(t, rec).Error)
	assert.Equal(t, 0, remover.calls)
}

func TestRemoveFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"missing credential", gemini.ErrMissingCredential, http.StatusServiceUnavailable, "API key not set"},
		{"no image", &gemini.NoImageReturnedError{Text: "Sorry, I can't process this."}, http.StatusBadGateway, "Sorry, I can't process this."},
		{"timeout", &gemini.ProcessingError{Err: fmt.Errorf("%w: deadline", gemini.ErrTimeout)}, http.StatusGatewayTimeout, "timed out"},
		{"transport", &gemini.ProcessingError{Err: errors.New("connection refused")}, http.StatusBadGateway, "failed to process image: connection refused"},
		{"malformed", encoder.ErrMalformedEncoding, http.StatusBadRequest, "invalid file format"},
		{"unknown", gemini.ErrUnknownProcessing, http.StatusBadGateway, "unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewServer(&fakeRemover{err: tt.err}, Options{}).Routes().ServeHTTP(rec,
				uploadRequest(t, "/api/remove", "a.png", "image/png", []byte("raw")))

			assert.Equal(t, tt.wantStatus, rec.Code)
			out := decode(t, rec)
			assert.Nil(t, out.Image)
			assert.Empty(t, out.DataURI)
			assert.Contains(t, out.Error, tt.wantMsg)
		})
	}
}

func TestIndexPage(t *testing.T) {
	srv := NewServer(&fakeRemover{}, Options{})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=en&theme=light", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AI Subtitle Remover")
	assert.Contains(t, rec.Body.String(), `<body class="light">`)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")
	srv.Routes().ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "AI 자막 제거기")
	assert.Contains(t, rec.Body.String(), `<body class="dark">`)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(&fakeRemover{}, Options{}).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
