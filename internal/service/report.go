package service

import (
	"bytes"
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/akilcn01-oss/Inventory-Management/internal/metrics"
	"github.com/akilcn01-oss/Inventory-Management/internal/model"
)

// ReportContentType is the media type of generated reports.
const ReportContentType = "text/csv; charset=utf-8"

var (
	fullReportHeader     = []string{"ID", "Name", "Category", "Quantity", "Price", "Total Value", "Status", "Created At"}
	lowStockReportHeader = []string{"Priority", "ID", "Name", "Category", "Quantity", "Price", "Total Value", "Reorder"}
)

// Report renders the document of the given kind.
func (ps *ProductService) Report(ctx context.Context, kind model.ReportKind) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}

	products, err := ps.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	var (
		buf bytes.Buffer
		w   = csv.NewWriter(&buf)
	)
	switch kind {
	case model.ReportLowStock:
		ps.writeLowStockReport(w, products)
	default:
		ps.writeFullReport(w, products)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write %s report: %w", kind, err)
	}

	metrics.ReportsGenerated.WithLabelValues(string(kind)).Inc()
	return buf.Bytes(), nil
}

func (ps *ProductService) writeFullReport(w *csv.Writer, products []model.Product) {
	slices.SortFunc(products, func(a, b model.Product) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var (
		totalQuantity int
		totalValue    float64
		lowStock      int
	)
	_ = w.Write(fullReportHeader)
	for _, p := range products {
		status := "In Stock"
		if p.IsLowStock(ps.lowStockThreshold) {
			status = "Low Stock"
			lowStock++
		}
		totalQuantity += p.Quantity
		totalValue += p.TotalValue()
		_ = w.Write([]string{
			strconv.Itoa(p.ID), p.Name, p.Category, strconv.Itoa(p.Quantity),
			p.FormattedPrice(), p.FormattedTotalValue(), status, p.CreatedAt.String(),
		})
	}

	_ = w.Write(nil)
	summary := model.DashboardStats{TotalInventoryValue: roundCents(totalValue)}
	_ = w.Write([]string{"Total Products", strconv.Itoa(len(products))})
	_ = w.Write([]string{"Total Quantity", strconv.Itoa(totalQuantity)})
	_ = w.Write([]string{"Total Value", summary.FormattedTotalValue()})
	_ = w.Write([]string{"Low Stock Items", strconv.Itoa(lowStock)})
}

func (ps *ProductService) writeLowStockReport(w *csv.Writer, products []model.Product) {
	low := slices.DeleteFunc(products, func(p model.Product) bool {
		return !p.IsLowStock(ps.lowStockThreshold)
	})
	slices.SortFunc(low, func(a, b model.Product) int {
		if c := cmp.Compare(a.Quantity, b.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	var (
		critical    int
		valueAtRisk float64
	)
	_ = w.Write(lowStockReportHeader)
	for _, p := range low {
		priority := "Low"
		if p.IsCriticalStock(ps.lowStockThreshold) {
			priority = "Critical"
			critical++
		}
		valueAtRisk += p.TotalValue()
		_ = w.Write([]string{
			priority, strconv.Itoa(p.ID), p.Name, p.Category, strconv.Itoa(p.Quantity),
			p.FormattedPrice(), p.FormattedTotalValue(), "+" + strconv.Itoa(ps.reorderQuantity(p)),
		})
	}

	_ = w.Write(nil)
	summary := model.DashboardStats{TotalInventoryValue: roundCents(valueAtRisk)}
	_ = w.Write([]string{"Low Stock Items", strconv.Itoa(len(low))})
	_ = w.Write([]string{"Critical Items", strconv.Itoa(critical)})
	_ = w.Write([]string{"Total Value at Risk", summary.FormattedTotalValue()})
}

// reorderQuantity suggests restocking to twice the threshold, ordering at least one threshold's worth.
func (ps *ProductService) reorderQuantity(p model.Product) int {
	return max(2*ps.lowStockThreshold-p.Quantity, ps.lowStockThreshold)
}
