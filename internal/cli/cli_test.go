package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/textfill/internal/config"
	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/adapters/memory"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `id: promo
current_page: Main
pages:
  - name: Main
    selection: [logo, title, subtitle]
    nodes:
      - id: logo
        type: VECTOR
      - id: title
        characters: Old title
      - id: subtitle
        set_text: Old subtitle
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "promo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))
	return path
}

func testEnv(endpoint string) *Env {
	cfg := config.Default()
	cfg.Endpoint = endpoint
	cfg.Timeout = 2 * time.Second
	return &Env{Config: cfg, Logger: logging.NewNop()}
}

func generationServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSetup(t *testing.T) {
	t.Setenv("TEXTFILL_LOG_LEVEL", "")

	t.Run("Reads config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "textfill.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint: http://localhost:9999/api/generate\n"), 0644))

		env, err := Setup(Options{ConfigPath: path})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9999/api/generate", env.Config.Endpoint)
		assert.NotNil(t, env.Logger)
	})

	t.Run("Flag overrides level", func(t *testing.T) {
		env, err := Setup(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), LogLevel: "debug"})
		require.NoError(t, err)
		assert.Equal(t, "debug", env.Config.LogLevel)
		assert.True(t, env.Logger.Enabled(context.Background(), -4))
	})

	t.Run("Unknown level", func(t *testing.T) {
		_, err := Setup(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), LogLevel: "loud"})
		assert.Error(t, err)
	})
}

func TestNewTextModel(t *testing.T) {
	ctx := context.Background()

	model, err := NewTextModel(ctx, config.Service{Backend: "qwen"})
	require.NoError(t, err)
	assert.Equal(t, "openai:qwen-turbo", model.Name())

	model, err = NewTextModel(ctx, config.Service{Backend: "OpenAI"})
	require.NoError(t, err)
	assert.Equal(t, "openai:"+DefaultOpenAIModel, model.Name())

	model, err = NewTextModel(ctx, config.Service{Backend: "openai", Model: "local-llama", BaseURL: "localhost:11434/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai:local-llama", model.Name())

	_, err = NewTextModel(ctx, config.Service{Backend: "gemini"})
	assert.Error(t, err, "gemini needs an API key")

	_, err = NewTextModel(ctx, config.Service{Backend: "markov"})
	assert.ErrorContains(t, err, "unknown service backend")
}

func TestRunFill(t *testing.T) {
	srv := generationServer(t, http.StatusOK, `{"success":true,"texts":["Alpha","Beta"]}`)
	path := writeFixture(t)

	var out, status bytes.Buffer
	err := RunFill(context.Background(), testEnv(srv.URL), FillOptions{
		Path:        path,
		Description: "launch copy",
		Out:         &out,
		Status:      &status,
	})
	require.NoError(t, err)

	doc, err := memory.LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc.Text("title"))
	assert.Equal(t, "Beta", doc.Text("subtitle"))

	assert.Contains(t, out.String(), domain.FilledMessage(2))
	assert.Contains(t, out.String(), "Alpha")
	assert.Contains(t, status.String(), "generating 2 texts")
}

func TestRunFill_DryRun(t *testing.T) {
	srv := generationServer(t, http.StatusOK, `{"success":true,"texts":["Alpha","Beta"]}`)
	path := writeFixture(t)

	err := RunFill(context.Background(), testEnv(srv.URL), FillOptions{
		Path:        path,
		Description: "launch copy",
		DryRun:      true,
		Out:         &bytes.Buffer{},
		Status:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(data))
}

func TestRunFill_ServiceError(t *testing.T) {
	srv := generationServer(t, http.StatusBadGateway, `{"error":"upstream model failed"}`)
	path := writeFixture(t)

	var out bytes.Buffer
	err := RunFill(context.Background(), testEnv(srv.URL), FillOptions{
		Path:        path,
		Description: "launch copy",
		Out:         &out,
		Status:      &bytes.Buffer{},
	})
	require.ErrorIs(t, err, ErrFillFailed)
	assert.ErrorContains(t, err, "upstream model failed")
	assert.Contains(t, out.String(), "No text layer was changed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(data), "a failed generation must not touch the file")
}

func TestRunFill_MissingDocument(t *testing.T) {
	err := RunFill(context.Background(), testEnv("http://127.0.0.1:1"), FillOptions{
		Path: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	assert.ErrorContains(t, err, "load document")
}

func TestRunBridge_JSON(t *testing.T) {
	srv := generationServer(t, http.StatusOK, `{"success":true,"texts":["Alpha","Beta"]}`)
	path := writeFixture(t)

	in := strings.NewReader(`{"pluginMessage":{"type":"submit","text":"launch copy"}}` + "\n")
	var out bytes.Buffer
	err := RunBridge(context.Background(), testEnv(srv.URL), BridgeOptions{Path: path, In: in, Out: &out})
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"type":"success"`)
	doc, err := memory.LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc.Text("title"))
}

func TestRunBridge_ConfiguredEnvelopeKeys(t *testing.T) {
	srv := generationServer(t, http.StatusOK, `{"success":true,"texts":["Alpha","Beta"]}`)
	path := writeFixture(t)
	env := testEnv(srv.URL)
	env.Config.Selection.EnvelopeKeys = []string{"payload"}

	in := strings.NewReader(`{"pluginMessage":{"type":"submit","text":"ignored"}}` + "\n" +
		`{"payload":{"type":"submit","text":"launch copy"}}` + "\n")
	var out bytes.Buffer
	err := RunBridge(context.Background(), env, BridgeOptions{Path: path, In: in, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out.String(), `"type":"success"`))
	doc, err := memory.LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc.Text("title"))
}

func TestNewFiller_UnknownSelectionSource(t *testing.T) {
	env := testEnv("")
	env.Config.Selection.Source = "layers"

	_, _, err := env.NewFiller(context.Background(), nil)
	assert.ErrorContains(t, err, "unknown selection source")
}

func TestRunBridge_Text(t *testing.T) {
	srv := generationServer(t, http.StatusOK, `{"success":true,"texts":["Alpha","Beta"]}`)
	path := writeFixture(t)

	var out bytes.Buffer
	err := RunBridge(context.Background(), testEnv(srv.URL), BridgeOptions{
		Path: path,
		Text: true,
		In:   strings.NewReader("launch copy\nexit\n"),
		Out:  &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), ">>> Filling")
	assert.Contains(t, out.String(), domain.FilledMessage(2))
}

func TestDocumentSaver_SkipsUnchanged(t *testing.T) {
	path := writeFixture(t)
	doc, err := memory.LoadDocument(path)
	require.NoError(t, err)

	saver, err := newDocumentSaver(doc, path, testEnv(""))
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	require.NoError(t, saver.Save(context.Background(), domain.Failed("network error: offline")))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unchanged document must not be written")

	node, ok := doc.Node("title")
	require.True(t, ok)
	node.(*memory.CharactersNode).SetCharacters("New")
	require.NoError(t, saver.Save(context.Background(), domain.Succeeded(domain.FilledMessage(1))))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestServeHTTP_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveHTTP(ctx, "127.0.0.1:0", http.NotFoundHandler(), logging.NewNop())
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestServeHTTP_ListenError(t *testing.T) {
	err := serveHTTP(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), logging.NewNop())
	assert.ErrorContains(t, err, "server error")
}
