// Package httpapi provides the JSON client used for Keystrand backend calls.
//
// Every SDK component that talks to the wallet backend goes through this
// client so identity headers, auth propagation, and error decoding stay in
// one place.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
)

const (
	headerClientID    = "x-ks-client-id"
	headerEcosystemID = "x-ks-ecosystem-id"
	headerPartnerID   = "x-ks-partner-id"
)

// Client issues authenticated JSON requests against the backend API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	clientID    string
	ecosystemID string
	partnerID   string
}

// Option customizes a Client.
type Option func(*Client)

// WithEcosystem scopes requests to a shared wallet ecosystem.
func WithEcosystem(ecosystemID, partnerID string) Option {
	return func(c *Client) {
		c.ecosystemID = ecosystemID
		c.partnerID = partnerID
	}
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a backend API client for the given application.
func New(cfg Config, clientID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		clientID:   clientID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request. An empty authToken omits the Authorization header.
func (c *Client) Get(ctx context.Context, path string, query url.Values, authToken string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, authToken, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, authToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request %s: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, authToken, out)
}

func (c *Client) do(req *http.Request, authToken string, out any) error {
	req.Header.Set(headerClientID, c.clientID)
	if c.ecosystemID != "" {
		req.Header.Set(headerEcosystemID, c.ecosystemID)
	}
	if c.partnerID != "" {
		req.Header.Set(headerPartnerID, c.partnerID)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure, "call wallet backend", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure, "read backend response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeErrorBody(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure, "decode backend response", err)
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeErrorBody maps backend error envelopes onto domain errors. The
// backend emits the same code taxonomy as this SDK, so a recognized code
// round-trips as-is; anything else becomes a transport failure.
func decodeErrorBody(status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		message := body.Message
		if message == "" {
			message = fmt.Sprintf("backend rejected request (%d)", status)
		}
		return apperrors.New(apperrors.Code(body.Code), message)
	}
	return apperrors.New(apperrors.CodeTransportFailure,
		fmt.Sprintf("backend returned status %d", status))
}
