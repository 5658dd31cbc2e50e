package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsmith-labs/packsmith/internal/addon"
	"github.com/packsmith-labs/packsmith/internal/config"
	"github.com/packsmith-labs/packsmith/internal/gateway"
	"github.com/packsmith-labs/packsmith/internal/generator"
	"github.com/packsmith-labs/packsmith/internal/pack"
	"github.com/packsmith-labs/packsmith/internal/respcache"
)

// scriptedClient returns canned model responses in order.
type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) Generate(_ context.Context, _ generator.Request) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("unexpected extra call")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func newTestServer(t *testing.T, client generator.Client) *Server {
	t.Helper()
	cfg := &config.AppConfig{
		ServerEnvConfig:  config.ServerEnvConfig{BodySizeLimit: 10 << 20},
		SessionEnvConfig: config.SessionEnvConfig{SessionTTL: time.Hour},
	}
	return NewServer(cfg, gateway.New(client, respcache.NewMemory()))
}

func decodeBody[T any](t *testing.T, resp *http.Response) StdResponse[T] {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out StdResponse[T]
	require.NoError(t, sonic.Unmarshal(data, &out))
	return out
}

func openSession(t *testing.T, s *Server) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[SessionResponse](t, resp).Body.SessionID
}

func uploadFiles(t *testing.T, s *Server, sessionID string, files map[string][]byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/"+sessionID+"/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &scriptedClient{})
	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpload_ExtractsContainers(t *testing.T) {
	s := newTestServer(t, &scriptedClient{})
	id := openSession(t, s)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("textures/icon.png")
	require.NoError(t, err)
	_, err = f.Write([]byte{0x89, 0x50})
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp := uploadFiles(t, s, id, map[string][]byte{"old.mcpack": buf.Bytes()})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[UploadResponse](t, resp)
	assert.Contains(t, body.Body.Files, "old.mcpack")
	assert.Contains(t, body.Body.Files, "textures/icon.png")
}

func TestUpload_UnknownSession(t *testing.T) {
	s := newTestServer(t, &scriptedClient{})
	resp := uploadFiles(t, s, "nope", map[string][]byte{"a.txt": []byte("x")})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerate_HappyPathAndCache(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"files":[{"path":"behavior/items/sword.json","content":"{}"}],"report":"ok"}`,
		`{"files":[{"path":"behavior/items/sword.json","content":"{\"fixed\":true}"}]}`,
	}}
	s := newTestServer(t, client)

	payload := `{"instruction":"build addon","prompt":"make a sword","temperature":0.7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[GenerateResponse](t, resp)
	require.Len(t, body.Body.Result.Files, 1)
	assert.Equal(t, `{"fixed":true}`, body.Body.Result.Files[0].Content)
	assert.Equal(t, "ok", body.Body.Result.Report)
	assert.Equal(t, 2, client.calls)

	// identical request is served from cache, no further model calls
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(payload))
	req2.Header.Set("Content-Type", "application/json")
	resp2, err := s.App.Test(req2, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, 2, client.calls)
}

func TestGenerate_GenerationErrorSurfacedAsBadGateway(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"files":[]}`}}
	s := newTestServer(t, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate",
		strings.NewReader(`{"instruction":"build","prompt":"noop"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGenerate_MissingPrompt(t *testing.T) {
	s := newTestServer(t, &scriptedClient{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"instruction":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPackage_DownloadWithWarnings(t *testing.T) {
	s := newTestServer(t, &scriptedClient{})
	id := openSession(t, s)
	uploadFiles(t, s, id, map[string][]byte{"x.png": {0x89, 0x50, 0x4e, 0x47}})

	body := PackageRequest{
		SessionID: id,
		Name:      "Sword & Board!",
		Files:     []addon.GeneratedFile{{Path: "a/b.json", Content: "{}"}},
		Relocations: []addon.Relocation{
			{OriginalPath: "x.png", NewPath: "a/textures/x.png"},
			{OriginalPath: "gone.png", NewPath: "a/textures/gone.png"},
		},
	}
	raw, err := sonic.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/package", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="Sword  Board.mcaddon"`)

	var warnBody packageWarnings
	require.NoError(t, sonic.UnmarshalString(resp.Header.Get(PackageWarningsHeader), &warnBody))
	require.Len(t, warnBody.Warnings, 1)
	assert.Equal(t, pack.WarnNotFound, warnBody.Warnings[0].Kind)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"a/b.json", "a/textures/x.png"}, names)
}

func TestPackageRaw(t *testing.T) {
	s := newTestServer(t, &scriptedClient{})

	var container bytes.Buffer
	zw := zip.NewWriter(&container)
	f, err := zw.Create("manifest.json")
	require.NoError(t, err)
	_, err = f.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("containers", "behavior.mcpack")
	require.NoError(t, err)
	_, err = fw.Write(container.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.WriteField("name", "Combined"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/package/raw", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "behavior.mcpack", zr.File[0].Name)
}
