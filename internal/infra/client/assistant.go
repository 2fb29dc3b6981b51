// Package client holds HTTP clients for services outside Supabase.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oblozinskyroman/stars/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// AssistantClient calls the hosted AI-proxy function. The function is a
// black box: one prompt in, one reply out.
type AssistantClient struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
}

// NewAssistantClient creates a new AssistantClient.
func NewAssistantClient(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker) *AssistantClient {
	return &AssistantClient{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
	}
}

// Ask sends the prompt and returns the proxy's reply text. One user
// question is one proxy call; the circuit breaker guards the path but
// nothing on it retries by itself.
func (c *AssistantClient) Ask(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "AssistantClient.Ask")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	var reply domain.AssistantReply

	_, err := c.cb.Execute(func() (any, error) {
		body, err := json.Marshal(domain.AssistantRequest{Prompt: prompt})
		if err != nil {
			return nil, err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("assistant function returned status %d", resp.StatusCode)
		}

		return nil, json.NewDecoder(resp.Body).Decode(&reply)
	})

	if err != nil {
		return "", &domain.ErrExternalService{Service: "assistant", Err: err}
	}

	return reply.Reply, nil
}
