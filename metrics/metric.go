package metrics

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format metric rows are keyed by.
const DateLayout = "2006-01-02"

// Source is where a metric row came from
type Source string

const (
	SourceAnalytics     Source = "analytics"      // Google Analytics
	SourceSearchConsole Source = "search_console" // Google Search Console
)

func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceAnalytics, SourceSearchConsole:
		return Source(s), nil
	}
	return "", fmt.Errorf("unknown metric source %q", s)
}

// Data is the bag of measurements for one day. Analytics rows fill the first
// five fields, Search Console rows the last four; absent values are nil.
type Data struct {
	Sessions           *int64   `json:"sessions,omitempty"`
	Users              *int64   `json:"users,omitempty"`
	Pageviews          *int64   `json:"pageviews,omitempty"`
	BounceRate         *float64 `json:"bounceRate,omitempty"`
	AvgSessionDuration *float64 `json:"avgSessionDuration,omitempty"`
	Clicks             *int64   `json:"clicks,omitempty"`
	Impressions        *int64   `json:"impressions,omitempty"`
	CTR                *float64 `json:"ctr,omitempty"`
	Position           *float64 `json:"position,omitempty"`
}

// Metric is one (tenant, date, source) row.
type Metric struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Source    Source    `json:"source"`
	Data      Data      `json:"data"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidateDate checks that d is a YYYY-MM-DD calendar date.
func ValidateDate(d string) error {
	if _, err := time.Parse(DateLayout, d); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
	}
	return nil
}

// NormalizeDate converts the YYYYMMDD form the Analytics API returns into YYYY-MM-DD.
// Other inputs are returned unchanged.
func NormalizeDate(d string) string {
	if len(d) == 8 {
		return d[0:4] + "-" + d[4:6] + "-" + d[6:8]
	}
	return d
}

// FormatDate renders t as a UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartDate returns the first date included in a window of daysBack days ending at now.
func StartDate(now time.Time, daysBack int) string {
	return FormatDate(now.UTC().AddDate(0, 0, -daysBack))
}
