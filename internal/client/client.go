// Package client is the data-access layer of the inventory application. Client issues one HTTP
// request per call against the inventory API and maps every outcome onto the error taxonomy in
// errors.go. AsyncClient runs the same calls on a worker pool and posts the results to a UI context.
package client

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
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/config"
	"github.com/akilcn01-oss/Inventory-Management/internal/metrics"
	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/google/uuid"
)

// RequestIDHeader correlates a client call with the API access log.
const RequestIDHeader = "X-Request-ID"

// Operation names used in errors, logs and metrics.
const (
	OpTestConnection = "test_connection"
	OpListProducts   = "list_products"
	OpGetProduct     = "get_product"
	OpCreateProduct  = "create_product"
	OpUpdateProduct  = "update_product"
	OpDeleteProduct  = "delete_product"
	OpDashboardStats = "dashboard_stats"
	OpCategories     = "categories"
	OpDownloadReport = "download_report"
)

// Client is safe for concurrent use. All calls share one *http.Client.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger

	closeOnce sync.Once
	closed    atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its own timeout applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for per-call logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the API at baseURL. The timeout bounds each request.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: must be an absolute http(s) URL", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromSettings creates a client for the configured base URL and timeout.
func NewFromSettings(s *config.Settings, opts ...Option) (*Client, error) {
	return New(s.APIBaseURL(), s.APITimeout(), opts...)
}

// BaseURL is the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections. Calls made afterwards fail with ErrClientClosed.
// It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.http.CloseIdleConnections()
		c.logger.Debug("API client closed", slog.String("base_url", c.BaseURL()))
	})
}

// TestConnection reports whether GET /health answers 200. It never fails.
func (c *Client) TestConnection(ctx context.Context) bool {
	var err error
	defer c.observe(OpTestConnection, time.Now(), &err)

	_, err = c.expectOK(ctx, OpTestConnection, http.MethodGet, "/health", nil, nil)
	return err == nil
}

// ListProducts returns one page of products, newest first.
func (c *Client) ListProducts(ctx context.Context, opts ListOptions) (products []model.Product, err error) {
	defer c.observe(OpListProducts, time.Now(), &err)

	data, err := c.expectOK(ctx, OpListProducts, http.MethodGet, "/products", opts.Values(), nil)
	if err != nil {
		return nil, err
	}
	products, err = decode[[]model.Product](OpListProducts, data)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// AllProducts returns up to MaxPageSize products.
func (c *Client) AllProducts(ctx context.Context) ([]model.Product, error) {
	return c.ListProducts(ctx, ListOptions{Limit: MaxPageSize})
}

// GetProduct returns the product, or nil without an error when the server does not know id.
func (c *Client) GetProduct(ctx context.Context, id int) (product *model.Product, err error) {
	defer c.observe(OpGetProduct, time.Now(), &err)

	status, data, err := c.send(ctx, OpGetProduct, http.MethodGet, productPath(id), nil, nil)
	switch {
	case err != nil:
		return nil, err
	case status == http.StatusNotFound:
		return nil, nil
	case status != http.StatusOK:
		return nil, &RequestFailedError{Op: OpGetProduct, StatusCode: status, Body: string(data)}
	}
	return decodePtr[model.Product](OpGetProduct, data)
}

// CreateProduct submits a draft. An invalid draft is refused without contacting the server.
func (c *Client) CreateProduct(ctx context.Context, draft model.Product) (product *model.Product, err error) {
	defer c.observe(OpCreateProduct, time.Now(), &err)

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	data, err := c.expectOK(ctx, OpCreateProduct, http.MethodPost, "/products", nil, newProductBody(draft))
	if err != nil {
		return nil, err
	}
	return decodePtr[model.Product](OpCreateProduct, data)
}

// UpdateProduct replaces every field of product id with draft.
func (c *Client) UpdateProduct(ctx context.Context, id int, draft model.Product) (product *model.Product, err error) {
	defer c.observe(OpUpdateProduct, time.Now(), &err)

	if err := validateUpdate(id, draft); err != nil {
		return nil, err
	}
	data, err := c.expectOK(ctx, OpUpdateProduct, http.MethodPut, productPath(id), nil, newProductBody(draft))
	if err != nil {
		return nil, err
	}
	return decodePtr[model.Product](OpUpdateProduct, data)
}

// DeleteProduct deletes product id and reports true once the server confirmed it.
func (c *Client) DeleteProduct(ctx context.Context, id int) (deleted bool, err error) {
	defer c.observe(OpDeleteProduct, time.Now(), &err)

	if _, err := c.expectOK(ctx, OpDeleteProduct, http.MethodDelete, productPath(id), nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// DashboardStats fetches a fresh statistics snapshot.
func (c *Client) DashboardStats(ctx context.Context) (stats *model.DashboardStats, err error) {
	defer c.observe(OpDashboardStats, time.Now(), &err)

	data, err := c.expectOK(ctx, OpDashboardStats, http.MethodGet, "/dashboard/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodePtr[model.DashboardStats](OpDashboardStats, data)
}

// Categories returns the categories in use.
func (c *Client) Categories(ctx context.Context) (categories []string, err error) {
	defer c.observe(OpCategories, time.Now(), &err)

	data, err := c.expectOK(ctx, OpCategories, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	payload, err := decode[struct {
		Categories []string `json:"categories"`
	}](OpCategories, data)
	if err != nil {
		return nil, err
	}
	if payload.Categories == nil {
		return []string{}, nil
	}
	return payload.Categories, nil
}

// DownloadReport returns the raw bytes of a generated report.
func (c *Client) DownloadReport(ctx context.Context, kind model.ReportKind) (document []byte, err error) {
	defer c.observe(OpDownloadReport, time.Now(), &err)

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
	status, data, err := c.send(ctx, OpDownloadReport, http.MethodGet, kind.Path(), nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &DownloadError{Kind: kind, StatusCode: status, Body: string(data)}
	}
	return data, nil
}

type productBody struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func newProductBody(p model.Product) productBody {
	return productBody{
		Name:        p.Name,
		Category:    p.Category,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Description: p.Description,
	}
}

func validateUpdate(id int, draft model.Product) error {
	if id <= 0 {
		return &model.ValidationError{Field: "id", Message: "Product must be saved before it can be updated"}
	}
	return draft.Validate()
}

func productPath(id int) string {
	return "/products/" + strconv.Itoa(id)
}

func (c *Client) expectOK(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	status, data, err := c.send(ctx, op, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RequestFailedError{Op: op, StatusCode: status, Body: string(data)}
	}
	return data, nil
}

// send performs a single attempt and returns the status and the whole body.
func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body any) (int, []byte, error) {
	if c.closed.Load() {
		return 0, nil, fmt.Errorf("%s: %w", op, ErrClientClosed)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Op: op, Err: err}
	}
	return resp.StatusCode, data, nil
}

func decode[T any](op string, data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, &DeserializationError{Op: op, Err: err}
	}
	return v, nil
}

func decodePtr[T any](op string, data []byte) (*T, error) {
	v, err := decode[T](op, data)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) observe(op string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	err := *errp
	outcome := outcomeOf(err)
	metrics.ObserveClientRequest(op, outcome, elapsed)

	if err == nil {
		c.logger.Debug("API call succeeded", slog.String("operation", op), slog.Duration("elapsed", elapsed))
		return
	}
	level := slog.LevelError
	if outcome == metrics.OutcomeValidation {
		level = slog.LevelWarn
	}
	c.logger.Log(context.Background(), level, "API call failed",
		slog.String("operation", op),
		slog.String("outcome", outcome),
		slog.Duration("elapsed", elapsed),
		slog.Any("err", err),
	)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, ErrTransport):
		return metrics.OutcomeTransport
	case errors.Is(err, ErrRequestFailed), errors.Is(err, ErrDownloadFailed):
		return metrics.OutcomeRequestFailed
	case errors.Is(err, ErrDeserialization):
		return metrics.OutcomeDecode
	default:
		return metrics.OutcomeFailure
	}
}
