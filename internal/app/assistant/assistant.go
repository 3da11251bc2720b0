/*
Package assistant integrates the student-facing AI study assistant.

It is a thin client for an OpenAI-compatible chat-completions upstream. The
server never stores conversations; each request carries the full message
history and the reply is returned straight to the caller.
*/
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"educonnect/internal/pkg/logx"
)

const (
	// requestTimeout bounds one upstream completion call.
	requestTimeout = 60 * time.Second

	// MaxMessages limits the history length accepted per request.
	MaxMessages = 50

	// MaxMessageBytes limits one message's content length.
	MaxMessageBytes = 8000

	// systemPrompt frames the assistant's role for every conversation.
	systemPrompt = "You are a helpful study assistant for students on an online " +
		"learning platform. Answer concisely, explain concepts step by step, and " +
		"when asked about a course topic, suggest what to study next."
)

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service answers student questions via the configured upstream.
type Service struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewService constructs the assistant client. An empty baseURL yields a
// disabled service; Enabled reports this so the handler can respond with a
// feature-unavailable error instead of dialing nowhere.
func NewService(baseURL, apiKey, model string) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether an upstream is configured.
func (s *Service) Enabled() bool {
	return s.baseURL != ""
}

// completionRequest is the OpenAI-compatible request body.
type completionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// completionResponse is the subset of the upstream response we consume.
type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends the conversation to the upstream and returns the assistant's reply.
// The system prompt is prepended server-side so clients cannot override it.
func (s *Service) Chat(ctx context.Context, history []ChatMessage) (ChatMessage, error) {
	if !s.Enabled() {
		return ChatMessage{}, fmt.Errorf("assistant upstream is not configured")
	}

	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	body, err := json.Marshal(completionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return ChatMessage{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ChatMessage{}, fmt.Errorf("failed to build completion request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	httpResp, err := s.client.Do(req)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("assistant upstream request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return ChatMessage{}, fmt.Errorf("failed to read assistant response: %w", err)
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return ChatMessage{}, fmt.Errorf("failed to decode assistant response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if completion.Error != nil && completion.Error.Message != "" {
			msg = completion.Error.Message
		}
		logx.Warn("Assistant upstream returned an error", "status", httpResp.StatusCode, "message", msg)
		return ChatMessage{}, fmt.Errorf("assistant upstream error: %s", msg)
	}

	if len(completion.Choices) == 0 {
		return ChatMessage{}, fmt.Errorf("assistant upstream returned no choices")
	}

	return completion.Choices[0].Message, nil
}

// ValidateHistory checks the inbound conversation shape before it is
// forwarded upstream.
func ValidateHistory(history []ChatMessage) error {
	if len(history) == 0 {
		return fmt.Errorf("conversation is empty")
	}
	if len(history) > MaxMessages {
		return fmt.Errorf("conversation exceeds %d messages", MaxMessages)
	}
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return fmt.Errorf("unsupported message role %q", m.Role)
		}
		if len(m.Content) == 0 || len(m.Content) > MaxMessageBytes {
			return fmt.Errorf("message content length out of range")
		}
	}
	return nil
}
