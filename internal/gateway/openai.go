package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient calls the chat completions API directly, bypassing the proxy.
// Roles are sent natively.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIClient(apiKey, model string, timeout time.Duration) *OpenAIClient {
	return newOpenAIClient(openai.DefaultConfig(apiKey), model, timeout)
}

func newOpenAIClient(cfg openai.ClientConfig, model string, timeout time.Duration) *OpenAIClient {
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: 1000,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system string, turns []Turn) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		switch t.Role {
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return resp.Choices[0].Message.Content, nil
}
