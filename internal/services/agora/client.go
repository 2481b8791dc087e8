package agora

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agora/internal/logging"
	"agora/internal/services"
)

const (
	defaultUploadTimeout = 120 * time.Second
	defaultLookupTimeout = 15 * time.Second
	maxResponseBytes     = 32 << 20
)

// Config describes the AGORA client configuration.
type Config struct {
	BaseURL       string
	Token         string
	HTTPClient    *http.Client
	UploadTimeout time.Duration
	LookupTimeout time.Duration
	Logger        *slog.Logger
}

// Client wraps the AGORA REST API.
type Client struct {
	baseURL       *url.URL
	token         string
	http          *http.Client
	uploadTimeout time.Duration
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("agora: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("agora: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("agora: base url %q must be absolute", base)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	upload := cfg.UploadTimeout
	if upload <= 0 {
		upload = defaultUploadTimeout
	}
	lookup := cfg.LookupTimeout
	if lookup <= 0 {
		lookup = defaultLookupTimeout
	}
	return &Client{
		baseURL:       baseURL,
		token:         strings.TrimSpace(cfg.Token),
		http:          httpClient,
		uploadTimeout: upload,
		lookupTimeout: lookup,
		logger:        logging.NewComponentLogger(cfg.Logger, "agora-client"),
	}, nil
}

// HasToken reports whether a bearer credential is configured.
func (c *Client) HasToken() bool {
	return c != nil && c.token != ""
}

// APIError is a non-2xx backend response. Error returns exactly the message
// extracted from the response body.
type APIError struct {
	StatusCode int
	Operation  string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap classifies the failure as services.ErrHTTP.
func (e *APIError) Unwrap() error {
	return services.ErrHTTP
}

type request struct {
	operation   string
	method      string
	path        string
	body        io.Reader
	contentType string
	timeout     time.Duration
	fallback    string
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	if req.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path), req.body)
	if err != nil {
		return fmt.Errorf("agora: build %s request: %w", req.operation, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		httpReq.Header.Set("X-Request-ID", rid)
	}

	logger := logging.WithContext(ctx, c.logger)
	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return services.Wrap(services.ErrHTTP, "agora", req.operation,
			fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return services.Wrap(services.ErrHTTP, "agora", req.operation, "read response", err)
	}
	logger.Debug("agora request completed",
		logging.String(logging.FieldOperation, req.operation),
		logging.String("method", req.method),
		logging.String("path", req.path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return services.Wrap(services.ErrDecode, "agora", req.operation,
				fmt.Sprintf("non-JSON error response (status %d)", resp.StatusCode), err)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Operation:  req.operation,
			Message:    extractMessage(payload, req.fallback),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrDecode, "agora", req.operation, "decode response", err)
	}
	return nil
}

// extractMessage picks the first non-empty error, detail or message field.
func extractMessage(payload map[string]any, fallback string) string {
	for _, key := range []string{"error", "detail", "message"} {
		if msg := messageValue(payload[key]); msg != "" {
			return msg
		}
	}
	return fallback
}

func messageValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if !v {
			return ""
		}
	case []any:
		if len(v) == 0 {
			return ""
		}
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSpace(buf.String())
}

func (c *Client) requireToken(operation string) error {
	if c.token == "" {
		return services.Wrap(services.ErrAuthentication, "agora", operation, "No access token available", nil)
	}
	return nil
}
