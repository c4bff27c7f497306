package client

import (
	"net/url"
	"strconv"
	"strings"
)

// MaxPageSize is the largest page the API serves.
const MaxPageSize = 1000

// ListOptions are the filters of a product listing.
type ListOptions struct {
	Skip int
	// Limit is omitted from the request when zero, leaving the page size to the server.
	Limit    int
	Category string
	Search   string
	// LowStock is sent only when set.
	LowStock *bool
}

// Page returns the options of the zero-based page of size products.
func Page(page, size int) ListOptions {
	return ListOptions{Skip: page * size, Limit: size}
}

// WithLowStock returns a copy of o filtering on the low-stock flag.
func (o ListOptions) WithLowStock(only bool) ListOptions {
	o.LowStock = &only
	return o
}

// Values encodes the options as query parameters. Blank text filters are left out.
func (o ListOptions) Values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(o.Skip))
	if o.Limit != 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if c := strings.TrimSpace(o.Category); c != "" {
		v.Set("category", c)
	}
	if s := strings.TrimSpace(o.Search); s != "" {
		v.Set("search", s)
	}
	if o.LowStock != nil {
		v.Set("low_stock", strconv.FormatBool(*o.LowStock))
	}
	return v
}
