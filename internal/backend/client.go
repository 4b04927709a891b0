// Package backend is the REST client for the external POS API. Every request
// carries the bearer credential from the session store; the create-sale call
// additionally runs behind a circuit breaker so a flapping backend fails fast
// instead of hanging the terminal.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// TokenSource supplies the bearer credential for outgoing requests. Empty
// means logged out; requests then go out unauthenticated and the backend
// answers with an auth error.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx backend response. Message is the backend-provided
// text, safe to show the cashier.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// UserMessage implements the checkout orchestrator's message contract.
func (e *APIError) UserMessage() string {
	return e.Message
}

// envelope is the backend's response wrapper: payload under "data", error
// text under "message".
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Sale]
}

func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	transport := otelhttp.NewTransport(&authTransport{
		tokens: tokens,
		next:   http.DefaultTransport,
	})

	settings := gobreaker.Settings{
		Name:    "create-sale",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Backend rejections (stock conflicts, validation) are expected
		// business answers, not backend health signals.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			apiErr, ok := err.(*APIError)
			return ok && apiErr.StatusCode < http.StatusInternalServerError
		},
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		breaker: gobreaker.NewCircuitBreaker[*domain.Sale](settings),
	}
}

// FetchProducts calls GET /products.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchCategories calls GET /categories.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateSale calls POST /sales. The returned record carries the
// backend-assigned invoice number and cashier identity.
func (c *Client) CreateSale(ctx context.Context, req domain.SaleRequest) (*domain.Sale, error) {
	return c.breaker.Execute(func() (*domain.Sale, error) {
		body, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("marshal sale request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sales", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		var sale domain.Sale
		if err := c.do(httpReq, &sale); err != nil {
			return nil, err
		}
		return &sale, nil
	})
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	var env envelope
	if len(body) > 0 {
		// Tolerate a non-JSON error body; the status code still decides.
		_ = json.Unmarshal(body, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil {
		if len(env.Data) == 0 {
			return fmt.Errorf("backend response missing data field")
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode backend response: %w", err)
		}
	}
	return nil
}

// authTransport decorates every request with the bearer credential.
type authTransport struct {
	tokens TokenSource
	next   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.tokens.Token(); token != "" {
		clone := req.Clone(req.Context())
		clone.Header.Set("Authorization", "Bearer "+token)
		return t.next.RoundTrip(clone)
	}
	return t.next.RoundTrip(req)
}
