package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/roznoapp/rozno/internal/domain"
)

// ChatMessage is one turn sent to the chat-completion endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage is the token accounting the gateway reports on the final chunk.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []ChatMessage  `json:"messages"`
	Stream        bool           `json:"stream"`
	SessionID     string         `json:"session_id,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

// AIGatewayService talks to an OpenAI-compatible streaming chat endpoint.
type AIGatewayService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAIGatewayService(baseURL, apiKey, model string) *AIGatewayService {
	return &AIGatewayService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		// No client timeout: the response streams for the lifetime of a
		// turn. Callers bound the call with a context deadline.
		httpClient: &http.Client{},
	}
}

// StreamChat opens one streaming completion request and invokes onDelta for
// every decoded text fragment, in arrival order. A nil return means the
// stream terminated normally ([DONE] sentinel or clean EOF) after every delta
// was delivered; a non-nil return means the stream failed and no completion
// signal applies. Malformed event records are skipped, not fatal.
func (s *AIGatewayService) StreamChat(ctx context.Context, sessionID string, messages []ChatMessage, onDelta func(string)) (*Usage, error) {
	body, err := json.Marshal(chatRequest{
		Model:         s.model,
		Messages:      messages,
		Stream:        true,
		SessionID:     sessionID,
		StreamOptions: &streamOptions{IncludeUsage: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, domain.ErrQuotaExhausted
	case resp.StatusCode != http.StatusOK:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ai gateway error [%d]: %s", resp.StatusCode, string(respBody))
	}

	// Line-based SSE decoding. bufio reassembles records from however the
	// transport chunked the bytes, including splits inside multi-byte runes.
	reader := bufio.NewReader(resp.Body)
	var usage *Usage

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// A single corrupt record is not fatal.
			continue
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			onDelta(delta)
		}
	}

	return usage, nil
}
