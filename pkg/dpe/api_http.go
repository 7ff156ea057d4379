package dpe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetHomeDeliveryPromise calls POST /promises/home-delivery.
func (c *HTTPAPIClient) GetHomeDeliveryPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error) {
	return c.promise(ctx, http.MethodPost, "/promises/home-delivery", req)
}

// GetCollectPromise calls POST /promises/click-and-collect.
func (c *HTTPAPIClient) GetCollectPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error) {
	return c.promise(ctx, http.MethodPost, "/promises/click-and-collect", req)
}

// GetPickupPromise calls POST /promises/pudo.
func (c *HTTPAPIClient) GetPickupPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error) {
	return c.promise(ctx, http.MethodPost, "/promises/pudo", req)
}

// GetPickupDefaults calls GET /sites/{site}/pudo-defaults.
func (c *HTTPAPIClient) GetPickupDefaults(ctx context.Context, siteName string, pudoID string) (*PromiseResponse, error) {
	path := fmt.Sprintf("/sites/%s/pudo-defaults", url.PathEscape(siteName))
	if pudoID != "" {
		path += "?pudoId=" + url.QueryEscape(pudoID)
	}
	return c.promise(ctx, http.MethodGet, path, nil)
}

func (c *HTTPAPIClient) promise(ctx context.Context, method, path string, body interface{}) (*PromiseResponse, error) {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result PromiseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode promise response: %w", err)
	}
	return &result, nil
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("User-Agent", "tournevent-shipping/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dpe %s %s: %w", method, path, err)
	}
	return resp, nil
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	var simpleErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := string(body)
	if err := json.Unmarshal(body, &simpleErr); err == nil {
		if simpleErr.Error != "" {
			msg = simpleErr.Error
		} else if simpleErr.Message != "" {
			msg = simpleErr.Message
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message:    msg,
	}
}

var _ APIClient = (*HTTPAPIClient)(nil)
