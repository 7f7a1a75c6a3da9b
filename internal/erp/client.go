// Package erp integrates with the external pricing/quoting API. It provides
// a resilient REST client plus thin typed services for the three resource
// types the pipeline consumes: items, item prices, and sales quotes.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client defaults. Overridable per Config.
const (
	DefaultAPIVersion = "v2.0"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// Config holds the connection settings for the ERP API.
// Exactly one of AccessToken or APIKey must be set; both are sent as a
// bearer credential.
type Config struct {
	// BaseURL is the API root, e.g. "https://erp.example.com".
	BaseURL string

	// CompanyID is the tenant/company identifier addressed in every URL.
	CompanyID string

	// APIVersion defaults to DefaultAPIVersion when empty.
	APIVersion string

	// AccessToken is an OAuth bearer access token.
	AccessToken string

	// APIKey is a static API key, used when no access token is configured.
	APIKey string

	// Timeout is the per-request deadline. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the total attempt budget for retryable failures.
	// Defaults to DefaultMaxRetries.
	MaxRetries int

	// DisableRetries turns off automatic re-attempts; retries are enabled
	// by default.
	DisableRetries bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a resilient HTTP client for the ERP API. It attaches
// authentication, enforces a per-attempt deadline, classifies every failure
// into an APIError, and retries retryable failures with exponential backoff.
// Stateless aside from its configuration; safe for concurrent use.
type Client struct {
	baseURL      string
	companyID    string
	version      string
	credential   string
	timeout      time.Duration
	maxRetries   int
	retryEnabled bool
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a client from cfg. Construction fails when neither an
// access token nor an API key is configured.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("erp: base URL is required")
	}
	if cfg.CompanyID == "" {
		return nil, fmt.Errorf("erp: company ID is required")
	}

	credential := cfg.AccessToken
	if credential == "" {
		credential = cfg.APIKey
	}
	if credential == "" {
		return nil, fmt.Errorf("erp: either an access token or an API key is required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		companyID:    cfg.CompanyID,
		version:      version,
		credential:   credential,
		timeout:      timeout,
		maxRetries:   maxRetries,
		retryEnabled: !cfg.DisableRetries,
		httpClient:   &http.Client{},
		logger:       logger,
	}, nil
}

// Get executes a GET against the company-scoped endpoint and decodes the
// JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post serializes body as JSON, executes a POST against the company-scoped
// endpoint, and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// endpointURL builds {base}/api/{version}/companies({companyID}){path}.
func (c *Client) endpointURL(path string, query url.Values) string {
	u := fmt.Sprintf("%s/api/%s/companies(%s)%s", c.baseURL, c.version, c.companyID, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do runs the attempt chain. Attempts are strictly sequential; the backoff
// sleep blocks only this call. The final classified error is returned when
// the failure is not retryable, retries are disabled, or the budget is
// exhausted.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindUnknown, Message: fmt.Sprintf("encode request body: %v", err)}
		}
	}

	endpoint := c.endpointURL(path, query)

	for attempt := 1; ; attempt++ {
		err := c.doOnce(ctx, method, endpoint, payload, out)
		if err == nil {
			return nil
		}

		apiErr, ok := AsAPIError(err)
		if !ok || !c.retryEnabled || !apiErr.Kind.Retryable() || attempt >= c.maxRetries {
			return err
		}

		delay := backoff(attempt)
		c.logger.Warn("erp request failed, retrying",
			"method", method,
			"path", path,
			"kind", apiErr.Kind.String(),
			"attempt", attempt,
			"delay", delay,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ClassifyTransport(ctx.Err())
		}
	}
}

// doOnce executes a single attempt under the per-request deadline.
func (c *Client) doOnce(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return &APIError{Kind: KindUnknown, Message: fmt.Sprintf("build request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ClassifyTransport(err)
	}

	// A non-2xx is always an error path, classified by status.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ClassifyResponse(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}

	// Empty or non-JSON success bodies yield an empty result; some
	// endpoints respond 204 or with no machine-readable content.
	if len(respBody) == 0 || !isJSONContentType(resp.Header.Get("Content-Type")) {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Kind: KindUnknown, Message: fmt.Sprintf("decode response body: %v", err)}
	}
	return nil
}

// backoff returns the delay after the given 1-based attempt:
// 2^attempt * 100ms, no jitter.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 100 * time.Millisecond
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
