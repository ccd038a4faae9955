package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/safestream/safestream-go/pkg/metrics"
	"github.com/safestream/safestream-go/pkg/requestid"
	"github.com/safestream/safestream-go/pkg/version"
)

const (
	// DefaultRequestTimeout bounds a single HTTP exchange, not a whole polling wait.
	DefaultRequestTimeout = 60 * time.Second

	tokenResource = "token"
	apiKeyHeader  = "x-api-key"
)

// Client issues authenticated requests against the SafeStream API.
// It is safe for concurrent use.
type Client struct {
	config         *Config
	credentials    *CredentialCache
	requestTimeout time.Duration
	log            *zap.SugaredLogger
}

type Option func(*Client)

// WithCredentialCache replaces the process-wide credential cache with the given one.
func WithCredentialCache(cache *CredentialCache) Option {
	return func(c *Client) {
		c.credentials = cache
	}
}

// WithRequestTimeout sets the timeout of a single HTTP exchange. Zero disables it.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithService overrides where the API is reached.
func WithService(service Service) Option {
	return func(c *Client) {
		c.config.Service = service
	}
}

// New returns a client for the default SafeStream endpoint authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	config := NewDefault()
	config.APIKey = apiKey
	return NewFromConfig(config, opts...)
}

// NewFromConfig returns a new SafeStream API client from the given config.
func NewFromConfig(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("NewFromConfig: config is required")
	}

	c := &Client{
		config:         config.DeepCopy(),
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("NewFromConfig: %w", err)
	}
	if c.log == nil {
		c.log = zap.S().Named("safestream")
	}
	if c.credentials == nil {
		c.credentials = sharedCredentialCache(c.ResourceURL(tokenResource), c.config.APIKey)
	}

	return c, nil
}

func (c *Client) Config() *Config {
	return c.config.DeepCopy()
}

func (c *Client) Logger() *zap.SugaredLogger {
	return c.log
}

func (c *Client) Credentials() *CredentialCache {
	return c.credentials
}

// ResourceURL returns the absolute URL of an API resource such as "videos".
func (c *Client) ResourceURL(resource string) string {
	return c.config.Service.ResourceURL(resource)
}

// Token returns the bearer credential, acquiring it on first use.
func (c *Client) Token(ctx context.Context) (Credential, error) {
	return c.credentials.Token(ctx, c.fetchToken)
}

func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.send(ctx, http.MethodGet, url, nil)
}

// Post sends body, when non-nil, encoded as JSON.
func (c *Client) Post(ctx context.Context, url string, body any) (*Response, error) {
	return c.send(ctx, http.MethodPost, url, body)
}

func (c *Client) GetResource(ctx context.Context, resource string) (*Response, error) {
	return c.Get(ctx, c.ResourceURL(resource))
}

func (c *Client) PostResource(ctx context.Context, resource string, body any) (*Response, error) {
	return c.Post(ctx, c.ResourceURL(resource), body)
}

func (c *Client) send(ctx context.Context, method string, url string, body any) (*Response, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, NewErrValidation("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, NewErrTransport(method, url, err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

// do executes req on a connection of its own and buffers the whole response body.
func (c *Client) do(req *http.Request) (*Response, error) {
	requestID := requestid.FromContextOrNew(req.Context())
	req.Header.Set(requestid.Header, requestID)
	req.Header.Set("User-Agent", version.UserAgent())

	httpClient := c.newHTTPClient()
	defer httpClient.CloseIdleConnections()

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(req.Method, 0, time.Since(start))
		c.log.Debugw("api request failed", "method", req.Method, "url", req.URL.String(), "request_id", requestID, "error", err)
		return nil, NewErrTransport(req.Method, req.URL.String(), errors.WithStack(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	latency := time.Since(start)
	metrics.ObserveRequest(req.Method, resp.StatusCode, latency)
	if err != nil {
		return nil, NewErrTransport(req.Method, req.URL.String(), errors.WithStack(fmt.Errorf("failed to read response body: %w", err)))
	}

	c.log.Debugw("api request completed",
		"method", req.Method,
		"url", req.URL.String(),
		"request_id", requestID,
		"status", resp.StatusCode,
		"latency", latency,
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, NewErrHTTP(resp.StatusCode, string(body))
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// newHTTPClient returns a client whose connections are not reused across calls.
func (c *Client) newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: c.requestTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 30 * time.Second,
			}).DialContext,
			DisableKeepAlives:     true,
			ForceAttemptHTTP2:     false,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

func (c *Client) fetchToken(ctx context.Context) (Credential, error) {
	tokenURL := c.ResourceURL(tokenResource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return "", NewErrTransport(http.MethodPost, tokenURL, err)
	}
	req.Header.Set(apiKeyHeader, c.config.APIKey)

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}

	body, err := Decode[map[string]any](resp)
	if err != nil {
		return "", err
	}
	token, ok := body["token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token endpoint response has no token field")
	}

	credential := Credential(token)
	if exp, ok := credential.ExpiresAt(); ok {
		if exp.Before(time.Now()) {
			c.log.Warnw("acquired auth token is already expired", "expires_at", exp)
		} else {
			c.log.Debugw("acquired auth token", "expires_at", exp)
		}
	} else {
		c.log.Debug("acquired auth token")
	}

	return credential, nil
}
