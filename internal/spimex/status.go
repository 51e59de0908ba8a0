// Package spimex talks to the exchange website: it finds which daily oil-products
// reports are published and downloads them into a local staging directory.
package spimex

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of probing or fetching a single report URL.
type Status int

const (
	Found Status = iota
	NotFound
	TransportError
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case TransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrSourceUnreachable is returned by the locator when the remote site cannot be contacted at all.
var ErrSourceUnreachable = errors.New("report source unreachable")

const (
	// DefaultBaseURL is the exchange website root.
	DefaultBaseURL = "https://spimex.com"

	reportPath       = "/upload/reports/oil_xls/oil_xls_"
	reportDateLayout = "20060102"
	reportSuffix     = "162000.xls"
)

// ReportURL returns the conventional download URL of the report published for day.
func ReportURL(baseURL string, day time.Time) string {
	return strings.TrimRight(baseURL, "/") + reportPath + day.Format(reportDateLayout) + reportSuffix
}
