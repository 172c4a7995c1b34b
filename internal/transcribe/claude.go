package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// transcribeInstruction is the fixed system instruction given to the
// recognition capability. Verbatim extraction only; commentary and markdown
// are stripped at the source rather than post-processed away.
const transcribeInstruction = `You are transcribing a page from a book. Extract all visible text from the image exactly as written, preserving paragraph breaks. Do not add commentary, headings of your own, or markdown formatting. Do not describe the image. Respond with the transcribed text and nothing else.`

// ClaudeClient calls the Anthropic Messages API to transcribe page images.
type ClaudeClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	stats      *RecognitionStats
}

func NewClaudeClient(apiKey, model string, stats *RecognitionStats) *ClaudeClient {
	return &ClaudeClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		stats: stats,
	}
}

type anthropicMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe sends one page image and returns the extracted text.
func (c *ClaudeClient) Transcribe(ctx context.Context, req Request) (string, error) {
	reqBody := anthropicRequest{
		Model:       c.model,
		MaxTokens:   4096,
		System:      transcribeInstruction,
		Temperature: req.Temperature,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: req.MediaType,
							Data:      base64.StdEncoding.EncodeToString(req.Image),
						},
					},
					{Type: "text", Text: "Transcribe this page."},
				},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Dropped connections and resets surface here.
		return "", &TransientError{Kind: KindConnectionReset, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds())
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &TransientError{Kind: KindConnectionReset, Message: err.Error(), Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &TransientError{Kind: KindRateLimited, StatusCode: resp.StatusCode, Message: string(respBody)}
	case resp.StatusCode == 529:
		return "", &TransientError{Kind: KindOverloaded, StatusCode: resp.StatusCode, Message: string(respBody)}
	case resp.StatusCode >= 500:
		return "", &TransientError{Kind: KindServerError, StatusCode: resp.StatusCode, Message: string(respBody)}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("recognition api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("recognition error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return "", nil
	}
	return apiResp.Content[0].Text, nil
}

// Model returns the configured model identifier.
func (c *ClaudeClient) Model() string { return c.model }

// Stats returns the latency stats collector, nil if none was attached.
func (c *ClaudeClient) Stats() *RecognitionStats { return c.stats }

// Close releases idle connections.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
