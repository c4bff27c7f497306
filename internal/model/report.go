package model

import (
	"fmt"
	"time"
)

// ReportKind selects one of the generated inventory documents.
type ReportKind string

const (
	ReportFull     ReportKind = "full"
	ReportLowStock ReportKind = "low-stock"
)

// ReportFileExtension is the extension of documents produced by the API.
const ReportFileExtension = "csv"

// Valid reports whether k is a known report kind.
func (k ReportKind) Valid() bool {
	return k == ReportFull || k == ReportLowStock
}

// Path is the API endpoint serving the report.
func (k ReportKind) Path() string {
	return "/documents/products/" + string(k)
}

// FileName is the suggested download file name for a report generated at now.
func (k ReportKind) FileName(now time.Time) string {
	prefix := "product_list"
	if k == ReportLowStock {
		prefix = "low_stock_report"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ReportFileExtension)
}

// ParseReportKind maps a user supplied name to a ReportKind.
func ParseReportKind(s string) (ReportKind, error) {
	k := ReportKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown report kind %q", s)
	}
	return k, nil
}
