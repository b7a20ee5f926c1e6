// Package client implements the HTTP+JSON A2A client used by remote
// agent proxies.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deskmesh/deskmesh/pkg/a2a/agentcard"
	"github.com/deskmesh/deskmesh/pkg/a2a/types"
	"github.com/deskmesh/deskmesh/pkg/errors"
)

// Option configures the A2A client.
type Option func(*Client)

// Client issues message:send and message:stream calls to one agent
// address. It sends exactly one outbound request per invocation and never
// retries; retry policy belongs to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New creates a client bound to an agent base URL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// WithTimeout sets a per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// BaseURL returns the bound agent address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchCard retrieves the agent card from the bound address.
func (c *Client) FetchCard(ctx context.Context) (*agentcard.AgentCard, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return agentcard.Fetch(ctx, c.baseURL)
}

// SendMessage posts the request to message:send and awaits the terminal
// reply.
func (c *Client) SendMessage(ctx context.Context, req *types.SendMessageRequest) (*types.Message, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, "/message:send", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteFailure(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransport(ctx, "response read failed", err)
	}
	var out types.SendMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.New(errors.CodeRemoteAgent, "malformed response", err).
			WithContext("url", c.baseURL)
	}
	if out.Message == nil {
		return nil, errors.New(errors.CodeRemoteAgent, "response carries no message", nil).
			WithContext("url", c.baseURL)
	}
	return out.Message, nil
}

// SendStreamingMessage posts the request to message:stream and folds the
// ordered sequence of partial events into one final message. Partial text
// is concatenated in arrival order.
func (c *Client) SendStreamingMessage(ctx context.Context, req *types.SendMessageRequest) (*types.Message, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, "/message:stream", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteFailure(resp)
	}

	var (
		text      strings.Builder
		contextID string
		sawFinal  bool
	)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event types.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			return nil, errors.New(errors.CodeRemoteAgent, "malformed stream event", err).
				WithContext("url", c.baseURL)
		}
		if event.Error != "" {
			return nil, errors.New(errors.CodeRemoteAgent, event.Error, nil).
				WithContext("url", c.baseURL)
		}
		if event.Message != nil {
			text.WriteString(event.Message.Text())
			if contextID == "" {
				contextID = event.Message.ContextID
			}
		}
		if event.Final {
			sawFinal = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapTransport(ctx, "stream read failed", err)
	}
	if !sawFinal {
		return nil, wrapTransport(ctx, "stream ended before final event", nil)
	}
	return &types.Message{
		MessageID: req.Message.MessageID + ":reply",
		ContextID: contextID,
		Role:      types.RoleAgent,
		Parts:     []types.Part{{Text: text.String()}},
	}, nil
}

func (c *Client) post(ctx context.Context, path string, req *types.SendMessageRequest) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "request encoding failed", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "invalid agent address", err).
			WithContext("url", c.baseURL)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, wrapTransport(ctx, "request failed", err)
	}
	return resp, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// wrapTransport distinguishes deadline expiry from other transport
// failures so strategies can apply their timeout propagation rules.
func wrapTransport(ctx context.Context, msg string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.New(errors.CodeTimeout, msg, ctx.Err())
	}
	return errors.New(errors.CodeRemoteAgent, msg, err)
}

func remoteFailure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = resp.Status
	}
	if resp.StatusCode == http.StatusRequestTimeout {
		return errors.New(errors.CodeTimeout, fmt.Sprintf("remote agent timed out: %s", detail), nil)
	}
	return errors.New(errors.CodeRemoteAgent, fmt.Sprintf("remote agent failed: %s", detail), nil)
}
