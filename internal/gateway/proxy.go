package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// wireAssistantRole is what the chatbot proxy expects in place of
// "assistant". The proxy has always received assistant history under this
// tag, so it is kept as-is.
const wireAssistantRole = RoleSystem

// ProxyClient posts conversations to the site's completion proxy
// (POST {messages} -> {response}).
type ProxyClient struct {
	url    string
	client *http.Client
}

func NewProxyClient(url string, timeout time.Duration) *ProxyClient {
	return &ProxyClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type proxyRequest struct {
	Messages []Turn `json:"messages"`
}

type proxyResponse struct {
	Response string `json:"response"`
}

// Complete sends the system instruction followed by the history and returns
// the proxy's reply text.
func (c *ProxyClient) Complete(ctx context.Context, system string, turns []Turn) (string, error) {
	body, err := json.Marshal(proxyRequest{Messages: ToWire(system, turns)})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(respBody))
	}

	var out proxyResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return out.Response, nil
}

// ToWire builds the proxy message list: the system instruction first, then
// the history with assistant turns relabeled.
func ToWire(system string, turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns)+1)
	out = append(out, Turn{Role: RoleSystem, Content: system})
	for _, t := range turns {
		role := t.Role
		if role == RoleAssistant {
			role = wireAssistantRole
		}
		out = append(out, Turn{Role: role, Content: t.Content})
	}
	return out
}
