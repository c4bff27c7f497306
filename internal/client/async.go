package client

import (
	"context"
	"fmt"

	"github.com/akilcn01-oss/Inventory-Management/internal/dispatch"
	"github.com/akilcn01-oss/Inventory-Management/internal/model"
)

// AsyncClient runs Client calls on the dispatcher's pool. Handlers run on the UI context.
type AsyncClient struct {
	client     *Client
	dispatcher *dispatch.Dispatcher
}

// NewAsync wraps c so that every call goes through d.
func NewAsync(c *Client, d *dispatch.Dispatcher) *AsyncClient {
	return &AsyncClient{client: c, dispatcher: d}
}

// Client returns the wrapped synchronous client.
func (a *AsyncClient) Client() *Client {
	return a.client
}

// TestConnection reports whether the API and its database are healthy. It never fails.
func (a *AsyncClient) TestConnection(ctx context.Context, h dispatch.Handlers[bool]) *dispatch.Future[bool] {
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) (bool, error) {
		return a.client.TestConnection(ctx), nil
	}, h)
}

// ListProducts fetches one filtered page of products.
func (a *AsyncClient) ListProducts(ctx context.Context, opts ListOptions, h dispatch.Handlers[[]model.Product]) *dispatch.Future[[]model.Product] {
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) ([]model.Product, error) {
		return a.client.ListProducts(ctx, opts)
	}, h)
}

// GetProduct fetches a product by id; OnSuccess receives nil when it does not exist.
func (a *AsyncClient) GetProduct(ctx context.Context, id int, h dispatch.Handlers[*model.Product]) *dispatch.Future[*model.Product] {
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) (*model.Product, error) {
		return a.client.GetProduct(ctx, id)
	}, h)
}

// CreateProduct refuses an invalid draft on the calling goroutine; its handlers are still posted.
func (a *AsyncClient) CreateProduct(ctx context.Context, draft model.Product, h dispatch.Handlers[*model.Product]) *dispatch.Future[*model.Product] {
	if err := draft.Validate(); err != nil {
		return dispatch.Fail(a.dispatcher, err, h)
	}
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) (*model.Product, error) {
		return a.client.CreateProduct(ctx, draft)
	}, h)
}

// UpdateProduct validates like CreateProduct before dispatching.
func (a *AsyncClient) UpdateProduct(ctx context.Context, id int, draft model.Product, h dispatch.Handlers[*model.Product]) *dispatch.Future[*model.Product] {
	if err := validateUpdate(id, draft); err != nil {
		return dispatch.Fail(a.dispatcher, err, h)
	}
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) (*model.Product, error) {
		return a.client.UpdateProduct(ctx, id, draft)
	}, h)
}

// DeleteProduct removes a product and reports whether the server confirmed it.
func (a *AsyncClient) DeleteProduct(ctx context.Context, id int, h dispatch.Handlers[bool]) *dispatch.Future[bool] {
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) (bool, error) {
		return a.client.DeleteProduct(ctx, id)
	}, h)
}

// DashboardStats fetches the inventory summary.
func (a *AsyncClient) DashboardStats(ctx context.Context, h dispatch.Handlers[*model.DashboardStats]) *dispatch.Future[*model.DashboardStats] {
	return dispatch.Dispatch(ctx, a.dispatcher, a.client.DashboardStats, h)
}

// Categories fetches the distinct category names.
func (a *AsyncClient) Categories(ctx context.Context, h dispatch.Handlers[[]string]) *dispatch.Future[[]string] {
	return dispatch.Dispatch(ctx, a.dispatcher, a.client.Categories, h)
}

// DownloadReport fetches a CSV report. An unknown kind fails without dispatching.
func (a *AsyncClient) DownloadReport(ctx context.Context, kind model.ReportKind, h dispatch.Handlers[[]byte]) *dispatch.Future[[]byte] {
	if !kind.Valid() {
		return dispatch.Fail(a.dispatcher, fmt.Errorf("%w: %q", ErrUnknownReport, kind), h)
	}
	return dispatch.Dispatch(ctx, a.dispatcher, func(ctx context.Context) ([]byte, error) {
		return a.client.DownloadReport(ctx, kind)
	}, h)
}
