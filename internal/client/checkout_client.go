package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	models "github.com/adriaticstays/booking-api/internal"
)

var (
	ErrBadStatusCode     = errors.New("invalid status code from checkout api")
	ErrMalformedResponse = errors.New("malformed response from checkout api")
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the hosted payment-checkout API. The bearer credential is
// held server-side only and never leaves this process.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	secretKey  string
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithSecretKey(key string) Option {
	return func(c *Client) {
		c.secretKey = key
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSession creates a payment-checkout session and returns the hosted
// redirect URL.
func (c *Client) CreateSession(ctx context.Context, checkoutReq models.CheckoutRequest) (string, error) {
	u := fmt.Sprintf("%s/checkout/sessions", c.baseURL)
	body, err := json.Marshal(checkoutReq)
	if err != nil {
		return "", fmt.Errorf("encoding checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling checkout api: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrBadStatusCode, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading checkout response: %w", err)
	}

	var session sessionResponse
	if err := json.Unmarshal(respBody, &session); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%w: missing redirect url", ErrMalformedResponse)
	}
	return session.URL, nil
}
