package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Generate_Success(t *testing.T) {
	var got domain.GenerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"texts":["a","b","c"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithHeader("X-Api-Key", "secret"))
	texts, err := c.Generate(context.Background(), "fruit names", 2)
	require.NoError(t, err)

	assert.Equal(t, domain.GenerationRequest{Description: "fruit names", Count: 2}, got)
	// Excess texts are returned; the orchestrator only applies the first N.
	assert.Equal(t, domain.GenerationResult{"a", "b", "c"}, texts)
}

func TestClient_Generate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json error field", http.StatusTooManyRequests, `{"error":"quota exceeded"}`, "quota exceeded"},
		{"raw text", http.StatusBadGateway, "upstream unavailable\n", "upstream unavailable"},
		{"empty body", http.StatusInternalServerError, "", "request failed: 500"},
		{"json without error", http.StatusNotFound, `{"detail":"nope"}`, "request failed: 404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := NewClient(srv.URL).Generate(context.Background(), "x", 1)

			var se *domain.ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestClient_Generate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", "<html>", domain.DefaultMalformedMessage},
		{"success false with error", `{"success":false,"error":"model refused"}`, "model refused"},
		{"missing success", `{"texts":["a"]}`, domain.DefaultMalformedMessage},
		{"missing texts", `{"success":true}`, domain.DefaultMalformedMessage},
		{"texts not array", `{"success":true,"texts":"a,b"}`, domain.DefaultMalformedMessage},
		{"texts null", `{"success":true,"texts":null}`, domain.DefaultMalformedMessage},
		{"non-string item", `{"success":true,"texts":["a",2]}`, domain.DefaultMalformedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			_, err := NewClient(srv.URL).Generate(context.Background(), "x", 1)

			var me *domain.MalformedResponseError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestClient_Generate_OversizedBody(t *testing.T) {
	texts := strings.Repeat(`"lorem ipsum dolor sit amet",`, (maxBodySize/28)+1)
	srv := serve(t, http.StatusOK, `{"success":true,"texts":[`+texts+`"end"]}`)

	_, err := NewClient(srv.URL).Generate(context.Background(), "x", 1)

	var me *domain.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestClient_Generate_OversizedErrorBody(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, strings.Repeat("x", maxBodySize+10))

	_, err := NewClient(srv.URL).Generate(context.Background(), "x", 1)

	var se *domain.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestWithTimeout_CopiesSharedClient(t *testing.T) {
	shared := &http.Client{Timeout: 30 * time.Second}

	c := NewClient("http://example.invalid", WithHTTPClient(shared), WithTimeout(time.Second))

	assert.Equal(t, 30*time.Second, shared.Timeout)
	assert.Equal(t, time.Second, c.http.Timeout)
	assert.NotSame(t, shared, c.http)
}

func TestClient_Generate_Insufficient(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success":true,"texts":["only one"]}`)
	_, err := NewClient(srv.URL).Generate(context.Background(), "x", 3)

	var ie *domain.InsufficientResultsError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.Requested)
	assert.Equal(t, 1, ie.Actual)
}

func TestClient_Generate_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Generate(context.Background(), "x", 1)
	assert.True(t, domain.IsTransport(err), "got %v", err)
}

func TestClient_Generate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Generate(context.Background(), "x", 1)
	assert.True(t, domain.IsTransport(err))
}

func TestClient_Generate_ContextCanceled(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success":true,"texts":["a"]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Generate(ctx, "x", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Generate_RejectsNonPositiveCount(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := NewClient(srv.URL).Generate(context.Background(), "x", 0)
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewClient("").Endpoint())
}
