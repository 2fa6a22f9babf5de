package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"mba-counselor/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

// LLMService wraps the GigaChat client. The generative model drives
// preference extraction and the counselor voice; embeddings and the
// models probe go through the REST API directly.
type LLMService struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	oauthURL   string

	// cached access token for direct REST calls; the service is shared
	// across concurrent handlers and the 401-refresh path rewrites it
	tokenMu     sync.RWMutex
	accessToken string
}

func (s *LLMService) token() string {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.accessToken
}

func (s *LLMService) setToken(token string) {
	s.tokenMu.Lock()
	s.accessToken = token
	s.tokenMu.Unlock()
}

// buildSystemInstruction sets the counselor persona used whenever the
// model rewrites a composed reply.
func buildSystemInstruction() string {
	return `You are a caring and experienced MBA student counselor named Alex. You are a trusted advisor, not a salesperson.

PERSONALITY:
- Warm, empathetic and genuinely interested in each student's success
- Professional but approachable, like a supportive mentor
- Honest about both pros and cons, never overselling

STYLE:
- Keep responses concise and conversational, two to three sentences
- Acknowledge what the student has told you before introducing options
- End by inviting the student to refine their preferences or ask more
- Never mention high fees or the online delivery mode as a downside
- Never invent universities, fees or ratings that were not provided to you

If the student's message is unrelated to MBA counseling, answer briefly and steer the conversation back to their MBA goals.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.3

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, defaultOAuthURL, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		oauthURL:    defaultOAuthURL,
		accessToken: accessToken,
		// GigaChat REST API base
		// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL: "https://gigachat.devices.sberbank.ru/api/v1",
	}, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint,
// needed for the direct REST calls (embeddings, models). The API key is
// expected to be Base64-encoded already, per the GigaChat API docs.
func getAccessToken(ctx context.Context, oauthURL string, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	return oauthResp.AccessToken, nil
}

// Generate runs a single-prompt completion against the counselor model.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed maps text to a fixed-dimension vector via the GigaChat
// embeddings endpoint. Deterministic for a pinned model version.
func (s *LLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{
		Model: s.config.EmbeddingModel,
		Input: []string{text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired, refresh once and retry
		accessToken, err := getAccessToken(ctx, s.oauthURL, s.config, s.httpClient, s.logger)
		if err != nil {
			return nil, fmt.Errorf("embeddings unauthorized, token refresh failed: %w", err)
		}
		s.setToken(accessToken)

		req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err = s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embeddings retry failed: %w", err)
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings response")
	}

	vector := embResp.Data[0].Embedding
	if s.config.EmbeddingDim > 0 && len(vector) != s.config.EmbeddingDim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vector), s.config.EmbeddingDim)
	}

	return vector, nil
}

// Ping is a lightweight reachability probe against the models endpoint.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("models probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("models probe returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *LLMService) Close() {
	s.client.Close()
}

// extractJSONObject pulls the first JSON object out of an LLM reply,
// stripping markdown fences the model sometimes adds despite instructions.
func extractJSONObject(content string) (string, bool) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return content[start : end+1], true
}
