// Package opponent talks to an OpenAI-compatible completion service to
// produce synthetic chat replies and guesses.
package opponent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"turing-arena/internal/config"
	"turing-arena/internal/game"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	mu  sync.Mutex
	rng *rand.Rand
}

func NewClient(cfg config.OpponentConfig) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      *float64      `json:"temperature,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message *chatMessage `json:"message,omitempty"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateReply produces the synthetic side's next message plus a human-like
// typing delay the caller should wait before delivering it.
func (c *Client) GenerateReply(ctx context.Context, transcript []game.Message, syntheticID, personality string) (string, time.Duration, error) {
	p := personalityByName(personality)
	last := lastContent(transcript)

	messages := []chatMessage{{Role: "system", Content: systemPrompt(p, last)}}
	for _, msg := range transcript {
		role := "user"
		if msg.SenderID == syntheticID {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}

	maxTokens := replyTokenBudget(last)
	temp, topP, freq, pres := 0.9, 0.95, 0.9, 0.7
	resp, err := c.createChatCompletion(ctx, &chatCompletionRequest{
		Model:            c.model,
		Messages:         messages,
		Temperature:      &temp,
		MaxTokens:        &maxTokens,
		TopP:             &topP,
		FrequencyPenalty: &freq,
		PresencePenalty:  &pres,
	})
	if err != nil {
		return "", 0, err
	}
	content := ""
	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil {
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if content == "" {
		content = "hey"
	}
	return content, c.typingDelay(content, last), nil
}

// PersonalityFor exposes the deterministic session-to-personality mapping on
// the client so callers can depend on one collaborator surface.
func (c *Client) PersonalityFor(sessionID string) string {
	return PersonalityFor(sessionID)
}

// GenerateGuess renders the synthetic side's independent verdict about its
// counterpart.
func (c *Client) GenerateGuess(ctx context.Context, transcript []game.Message, syntheticID string) (game.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rng.Float64() > 0.5 {
		return game.VerdictSynthetic, nil
	}
	return game.VerdictHuman, nil
}

func (c *Client) createChatCompletion(ctx context.Context, req *chatCompletionRequest) (*chatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("completion API error [%d]: %s (type: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return nil, fmt.Errorf("completion API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}

func lastContent(transcript []game.Message) string {
	if len(transcript) == 0 {
		return ""
	}
	return transcript[len(transcript)-1].Content
}

func replyTokenBudget(last string) int {
	switch {
	case isSimpleGreeting(last):
		return 5
	case strings.Contains(last, "?"):
		return 25
	}
	return 15
}
