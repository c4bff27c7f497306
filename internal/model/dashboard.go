package model

import (
	"fmt"
	"strconv"
	"strings"
)

// CategoryStats is the product count of one category.
type CategoryStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardStats is a read-only snapshot of aggregate inventory figures.
// It is fetched fresh after every product mutation and never patched locally.
type DashboardStats struct {
	TotalProducts       int             `json:"total_products"`
	TotalCategories     int             `json:"total_categories"`
	LowStockCount       int             `json:"low_stock_count"`
	TotalInventoryValue float64         `json:"total_inventory_value"`
	RecentProducts      int             `json:"recent_products"`
	TopCategories       []CategoryStats `json:"top_categories"`
}

// LowStockPercentage is the share of products below the low-stock threshold, in percent.
func (s DashboardStats) LowStockPercentage() float64 {
	if s.TotalProducts == 0 {
		return 0
	}
	return float64(s.LowStockCount) / float64(s.TotalProducts) * 100
}

func (s DashboardStats) HasLowStockAlerts() bool {
	return s.LowStockCount > 0
}

// AverageProductsPerCategory returns 0 when there are no categories.
func (s DashboardStats) AverageProductsPerCategory() float64 {
	if s.TotalCategories == 0 {
		return 0
	}
	return float64(s.TotalProducts) / float64(s.TotalCategories)
}

// FormattedTotalValue renders the inventory value with thousands separators, e.g. $12,345.67.
func (s DashboardStats) FormattedTotalValue() string {
	return "$" + groupThousands(s.TotalInventoryValue)
}

func groupThousands(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	fixed := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s.%s", sign, b.String(), frac)
}
