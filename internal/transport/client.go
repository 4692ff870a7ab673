package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/sovereign-client/internal/storage"
)

// APIPrefix is prepended to every endpoint path
const APIPrefix = "/api"

// Config holds transport settings
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080
	BaseURL string
	// Timeout bounds a single exchange
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// Client issues authenticated exchanges with the game server.
// The token is read from the store on every call, so a cleared store
// means the next request goes out without credentials.
type Client struct {
	baseURL    string
	store      storage.TokenStore
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new API client
func New(cfg Config, store storage.TokenStore, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return NewWithHTTPClient(cfg.BaseURL, store, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a client around an existing http.Client (for testing)
func NewWithHTTPClient(baseURL string, store storage.TokenStore, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		store:      store,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the server root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs a JSON exchange. body and result may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, _, err := c.send(req)
	if err != nil {
		return err
	}
	return decodeResult(respBody, result)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// PostMultipart sends a pre-encoded multipart body
func (c *Client) PostMultipart(ctx context.Context, path, contentType string, body io.Reader, result any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	respBody, _, err := c.send(req)
	if err != nil {
		return err
	}
	return decodeResult(respBody, result)
}

// Download is a binary response body
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GetBinary fetches a non-JSON body, reporting the server-suggested filename
func (c *Client) GetBinary(ctx context.Context, path string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	data, header, err := c.send(req)
	if err != nil {
		return nil, err
	}

	dl := &Download{
		ContentType: header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		dl.Filename = params["filename"]
	}
	return dl, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+APIPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.store.Get(ctx)
	switch {
	case err == nil && token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !errors.Is(err, storage.ErrNoToken):
		c.logger.Warn("token store read failed", "error", err)
	}
	return req, nil
}

// send performs the exchange and turns any non-2xx status into an APIError
func (c *Client) send(req *http.Request) ([]byte, http.Header, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, nil, transportFailure("unable to reach server", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, transportFailure("failed to read server response", err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, newAPIError(resp.StatusCode, respBody)
	}
	return respBody, resp.Header, nil
}

func decodeResult(body []byte, result any) error {
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return transportFailure("malformed server response", err)
	}
	return nil
}
