package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mba-counselor/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLMService(serverURL string, dim int) *LLMService {
	return &LLMService{
		config: &config.GigaChatConfig{
			Scope:          "GIGACHAT_API_PERS",
			EmbeddingModel: "Embeddings",
			EmbeddingDim:   dim,
			Timeout:        time.Second,
		},
		logger:      testLogger(),
		httpClient:  &http.Client{Timeout: time.Second},
		baseURL:     serverURL,
		oauthURL:    serverURL + "/oauth",
		accessToken: "stale-token",
	}
}

func embeddingsPayload(vector []float32) map[string]any {
	return map[string]any{
		"data": []map[string]any{{"embedding": vector}},
	}
}

func TestEmbedRefreshesTokenOnUnauthorized(t *testing.T) {
	var oauthCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth":
			oauthCalls++
			json.NewEncoder(w).Encode(map[string]any{"access_token": "fresh-token", "expires_in": 1800})
		case "/embeddings":
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(embeddingsPayload([]float32{0.1, 0.2}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := newTestLLMService(server.URL, 2)

	vector, err := svc.Embed(context.Background(), "finance mba")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2}, vector)
	assert.Equal(t, 1, oauthCalls, "a 401 refreshes the token exactly once")
	assert.Equal(t, "fresh-token", svc.token(), "the refreshed token is cached for later calls")
}

func TestEmbedDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingsPayload([]float32{0.1, 0.2, 0.3}))
	}))
	defer server.Close()

	svc := newTestLLMService(server.URL, 2)

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestPingUsesCachedToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestLLMService(server.URL, 2)

	require.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, "Bearer stale-token", gotAuth)
}

func TestTokenAccessIsConcurrencySafe(t *testing.T) {
	svc := newTestLLMService("http://unused", 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = svc.token()
			}
		}()
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				svc.setToken(fmt.Sprintf("token-%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.NotEmpty(t, svc.token())
}
