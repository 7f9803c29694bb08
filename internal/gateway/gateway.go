package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/types"
)

// ErrNotFound is wrapped by a TransportError for 404 responses
var ErrNotFound = errors.New("not found")

// Gateway reads and writes tax records on the backend.
// Every call is a single attempt: no retries and no caching.
type Gateway interface {
	FetchTaxes(ctx context.Context) ([]types.TaxRecord, error)
	FetchCountries(ctx context.Context) ([]types.Country, error)
	UpdateTax(ctx context.Context, id string, fields types.TaxRecord) (types.TaxRecord, error)
}

// TransportError is returned for any failed call: network, non-2xx status
// or an undecodable body
type TransportError struct {
	Op     string // "GET /taxes", "PUT /taxes/{id}", ...
	Status int    // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TLSConfig holds optional TLS/mTLS settings for the client
type TLSConfig struct {
	CertFile           string
	KeyFile            string
	CAFile             string
	InsecureSkipVerify bool
}

// Options configures a Client
type Options struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration // zero means no timeout
	TLS     *TLSConfig
}

// Client is the HTTP implementation of Gateway
type Client struct {
	baseURL string
	headers map[string]string
	http    *http.Client
}

// New creates a client for the backend at opts.BaseURL
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}

	httpClient, err := buildHTTPClient(opts.TLS, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	return &Client{
		baseURL: base,
		headers: opts.Headers,
		http:    httpClient,
	}, nil
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchTaxes loads every tax record
func (c *Client) FetchTaxes(ctx context.Context) ([]types.TaxRecord, error) {
	var out []types.TaxRecord
	if err := c.do(ctx, http.MethodGet, "/taxes", "GET /taxes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCountries loads the country reference list
func (c *Client) FetchCountries(ctx context.Context) ([]types.Country, error) {
	var out []types.Country
	if err := c.do(ctx, http.MethodGet, "/countries", "GET /countries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTax sends fields for record id and returns the server's record
func (c *Client) UpdateTax(ctx context.Context, id string, fields types.TaxRecord) (types.TaxRecord, error) {
	op := "PUT /taxes/{id}"
	body, err := json.Marshal(fields)
	if err != nil {
		return types.TaxRecord{}, &TransportError{Op: op, Err: fmt.Errorf("failed to encode record: %w", err)}
	}

	var out types.TaxRecord
	if err := c.do(ctx, http.MethodPut, "/taxes/"+url.PathEscape(id), op, body, &out); err != nil {
		return types.TaxRecord{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, op string, body []byte, dst any) error {
	start := time.Now()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("backend request failed", "op", op, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	logger.Debug("backend request", "op", op, "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(data))

	if !IsSuccessStatus(resp.StatusCode) {
		cause := fmt.Errorf("%s", strings.TrimSpace(string(data)))
		if resp.StatusCode == http.StatusNotFound {
			cause = ErrNotFound
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Err: cause}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	return nil
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration
func buildHTTPClient(tlsConfig *TLSConfig, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
