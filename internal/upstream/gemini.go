package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medassist-labs/medchat/internal/logger"
)

// DefaultBaseURL is the generative-language REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient is a Client bound to one API key. Construction is a pure
// function of the credential; the Rotator caches one per index.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

var _ Client = (*GeminiClient)(nil)

func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Request/response shapes for generateContent.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate sends the assembled prompt as a single user content and returns
// the first candidate's text. Quota depletion (HTTP 429 or a
// RESOURCE_EXHAUSTED error status) maps to ErrQuotaExceeded.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: http 429", ErrQuotaExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		var apiResp geminiResponse
		if json.Unmarshal(body, &apiResp) == nil && apiResp.Error != nil {
			if apiResp.Error.Status == "RESOURCE_EXHAUSTED" {
				return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, apiResp.Error.Message)
			}
			return "", fmt.Errorf("model api: status %d: %s", resp.StatusCode, apiResp.Error.Message)
		}
		return "", fmt.Errorf("model api: status %d", resp.StatusCode)
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	logger.Debug("model api response",
		"model", c.model,
		"duration", time.Since(start),
		"response_length", sb.Len())

	return sb.String(), nil
}
