package pispi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL and may hold {name} placeholders.
	Path       string
	PathParams map[string]string
	Query      url.Values
	Header     map[string]string
	// Body is marshalled as JSON when non-nil.
	Body any
}

// Client calls the PI-SPI API.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *slog.Logger

	Comptes  *ComptesService
	Webhooks *WebhooksService
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. to install a custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

// NewClient creates a Client from cfg. Zero fields of cfg fall back to DefaultConfig.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		http:   resty.New(),
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "pispi_client")

	c.http.
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent+"/"+cfg.Version)
	if cfg.APIKey != "" {
		c.http.SetAuthToken(cfg.APIKey)
	}

	c.Comptes = &ComptesService{client: c}
	c.Webhooks = &WebhooksService{client: c}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Do performs a single attempt of req.
func (c *Client) Do(ctx context.Context, req Request) Result {
	log := c.logger.With(slog.String("method", req.Method), slog.String("path", req.Path))

	r := c.http.R().SetContext(ctx)
	if len(req.PathParams) > 0 {
		r.SetPathParams(req.PathParams)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if len(req.Header) > 0 {
		r.SetHeaders(req.Header)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		log.Debug("HTTP request failed", slog.Any("error", err))
		return ResultTransportError{Cause: err}
	}

	status := resp.StatusCode()
	log.Debug("Received HTTP response", slog.Int("status_code", status))
	if status >= 200 && status < 300 {
		return ResultOK{Status: status, Header: resp.Header(), Body: resp.Body()}
	}
	return ResultHTTPError{
		Status:     status,
		StatusText: strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(status))),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}
}

// Call performs req with retries and decodes a successful JSON body into out.
// Failures are returned as *APIError or *TransportError.
func (c *Client) Call(ctx context.Context, req Request, out any) error {
	res := Retry(ctx, c.cfg.MaxRetries, c.cfg.RetryBase, func(ctx context.Context) Result {
		return c.Do(ctx, req)
	})

	ok, isOK := res.(ResultOK)
	if !isOK {
		err := res.Err()
		c.logger.Warn("API call failed",
			slog.String("method", req.Method), slog.String("path", req.Path), slog.Any("error", err))
		return err
	}
	if err := ok.Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return nil
}
