// Package subgraph implementa el SwapSource contra el subgraph GraphQL
// del pool, con rate limiting y la política de reintentos compartida.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/levery-org/levery-market-simulation/internal/retry"
)

// Rate limit conservador: los gateways públicos de The Graph cortan
// alrededor de ~30 req/s por key.
const queriesPerSec = 10

// Client es el HTTP client del subgraph.
type Client struct {
	http    *http.Client
	url     string
	poolID  string
	limiter *rate.Limiter
	retry   retry.Policy
}

// NewClient crea un Client contra el endpoint dado para el pool dado.
func NewClient(url, poolID string, policy retry.Policy) *Client {
	return &Client{
		http:    &http.Client{Timeout: policy.Timeout},
		url:     url,
		poolID:  poolID,
		limiter: rate.NewLimiter(queriesPerSec, 5),
		retry:   policy,
	}
}

// graphQLRequest es el envelope estándar de un POST GraphQL.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// query hace el POST con rate limiting y reintentos, decodificando
// data en out. Los errores GraphQL del servidor se tratan como
// transitorios salvo que los reintentos se agoten.
func (c *Client) query(ctx context.Context, op, query string, variables map[string]any, out any) error {
	return c.retry.Do(ctx, op, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
		if err != nil {
			return fmt.Errorf("marshal query: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
		}

		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors []graphQLError  `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if len(envelope.Errors) > 0 {
			return fmt.Errorf("graphql: %s", envelope.Errors[0].Message)
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
		return nil
	})
}
