package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lingo-client/internal/storage"
)

// maxPayload caps how much of a response body is kept in memory.
const maxPayload = 4 << 20

// TokenStore is the read side of durable storage the gateway needs.
type TokenStore interface {
	Get(key string) (string, bool)
}

// AuthFailureHandler is notified when an authenticated request gets a 401.
type AuthFailureHandler interface {
	HandleAuthFailure()
}

// AuthFailureFunc adapts a plain function to AuthFailureHandler.
type AuthFailureFunc func()

func (f AuthFailureFunc) HandleAuthFailure() { f() }

type GatewayConfig struct {
	BaseURL       string
	PublicBaseURL string
	Locale        string
	AuthTimeout   time.Duration
	PublicTimeout time.Duration
}

// Gateway builds request executors for the remote backend.
type Gateway struct {
	cfg       GatewayConfig
	tokens    TokenStore
	transport http.RoundTripper

	mu            sync.RWMutex
	onAuthFailure AuthFailureHandler
}

type GatewayOption func(*Gateway)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) GatewayOption {
	return func(g *Gateway) { g.transport = rt }
}

func NewGateway(cfg GatewayConfig, tokens TokenStore, opts ...GatewayOption) *Gateway {
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = cfg.BaseURL
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	g := &Gateway{cfg: cfg, tokens: tokens, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnAuthFailure registers the handler run when an authenticated request is
// rejected with 401.
func (g *Gateway) OnAuthFailure(h AuthFailureHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onAuthFailure = h
}

type clientOptions struct {
	baseURL string
	headers http.Header
	timeout time.Duration
}

// Option overrides the per-executor configuration.
type Option func(*clientOptions)

func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

func WithHeader(key, value string) Option {
	return func(o *clientOptions) { o.headers.Set(key, value) }
}

func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// Authenticated returns an executor that sends the stored bearer token and
// reports 401 responses to the auth failure handler.
func (g *Gateway) Authenticated(opts ...Option) *Client {
	c := g.newClient(g.cfg.BaseURL, g.cfg.AuthTimeout, opts)
	if token, ok := g.tokens.Get(storage.KeyAccessToken); ok && token != "" {
		c.headers.Set("Authorization", "Bearer "+token)
	}
	g.mu.RLock()
	c.onUnauthorized = g.onAuthFailure
	g.mu.RUnlock()
	return c
}

// Public returns an executor for endpoints that work without credentials.
func (g *Gateway) Public(opts ...Option) *Client {
	return g.newClient(g.cfg.PublicBaseURL, g.cfg.PublicTimeout, opts)
}

// newClient reads the locale at construction time, so a locale change only
// affects executors built afterwards.
func (g *Gateway) newClient(baseURL string, timeout time.Duration, opts []Option) *Client {
	o := clientOptions{baseURL: baseURL, headers: http.Header{}, timeout: timeout}
	for _, opt := range opts {
		opt(&o)
	}

	locale := g.cfg.Locale
	if stored, ok := g.tokens.Get(storage.KeyLocale); ok && stored != "" {
		locale = stored
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	headers.Set("Accept-Language", locale)
	for k, v := range o.headers {
		headers[k] = v
	}

	return &Client{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		headers: headers,
		http:    &http.Client{Timeout: o.timeout, Transport: g.transport},
	}
}

// Client executes requests against one base URL with a fixed header set.
type Client struct {
	baseURL        string
	headers        http.Header
	http           *http.Client
	onUnauthorized AuthFailureHandler
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Method: method, URL: url, RequestID: requestID, Message: "invalid request body", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Error{Kind: KindValidation, Method: method, URL: url, RequestID: requestID, Message: "invalid request", Err: err}
	}
	req.Header = c.headers.Clone()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, URL: url, RequestID: requestID, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, URL: url, Status: resp.StatusCode, RequestID: requestID, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			log.Printf("[gateway] %s %s rejected with 401, tearing down session (request %s)", method, url, requestID)
			c.onUnauthorized.HandleAuthFailure()
		}
		return &Error{Kind: KindAuth, Method: method, URL: url, Status: resp.StatusCode, RequestID: requestID, Message: errorMessage(resp.StatusCode, payload), Payload: payload}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Kind: KindServer, Method: method, URL: url, Status: resp.StatusCode, RequestID: requestID, Message: errorMessage(resp.StatusCode, payload), Payload: payload}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: KindDecode, Method: method, URL: url, Status: resp.StatusCode, RequestID: requestID, Message: "malformed response", Payload: payload, Err: err}
	}
	return nil
}

// errorMessage extracts the backend's message from an error payload,
// falling back to the status text.
func errorMessage(status int, payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(payload, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return http.StatusText(status)
}
