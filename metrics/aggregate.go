package metrics

import (
	"math"

	"github.com/jrsteele09/tenant-dashboard/internal/utils"
)

// AnalyticsSummary totals the analytics rows of a window.
type AnalyticsSummary struct {
	Sessions   int64   `json:"sessions"`
	Users      int64   `json:"users"`
	Pageviews  int64   `json:"pageviews"`
	BounceRate float64 `json:"bounceRate"` // Mean over rows, two decimals
}

// SearchConsoleSummary totals the search console rows of a window.
type SearchConsoleSummary struct {
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`      // Mean over rows, two decimals
	Position    float64 `json:"position"` // Mean over rows, two decimals
}

// Summary is the dashboard headline numbers.
type Summary struct {
	Analytics     AnalyticsSummary     `json:"analytics"`
	SearchConsole SearchConsoleSummary `json:"searchConsole"`
}

// Aggregate reduces rows to sums and averages. Counts are summed; rates and
// positions are averaged over all rows of their source, a missing field
// counting as zero.
func Aggregate(rows []*Metric) Summary {
	var (
		s                          Summary
		analyticsRows, consoleRows int
		bounceSum, ctrSum, posSum  float64
	)

	for _, m := range rows {
		switch m.Source {
		case SourceAnalytics:
			analyticsRows++
			s.Analytics.Sessions += utils.Value(m.Data.Sessions)
			s.Analytics.Users += utils.Value(m.Data.Users)
			s.Analytics.Pageviews += utils.Value(m.Data.Pageviews)
			bounceSum += utils.Value(m.Data.BounceRate)
		case SourceSearchConsole:
			consoleRows++
			s.SearchConsole.Clicks += utils.Value(m.Data.Clicks)
			s.SearchConsole.Impressions += utils.Value(m.Data.Impressions)
			ctrSum += utils.Value(m.Data.CTR)
			posSum += utils.Value(m.Data.Position)
		}
	}

	if analyticsRows > 0 {
		s.Analytics.BounceRate = Round2(bounceSum / float64(analyticsRows))
	}
	if consoleRows > 0 {
		s.SearchConsole.CTR = Round2(ctrSum / float64(consoleRows))
		s.SearchConsole.Position = Round2(posSum / float64(consoleRows))
	}
	return s
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ChartPoint is one row flattened for charting: date, source and the measurements side by side.
type ChartPoint struct {
	Date   string `json:"date"`
	Source Source `json:"source"`
	Data
}

// ChartData flattens rows in their given order.
func ChartData(rows []*Metric) []ChartPoint {
	points := make([]ChartPoint, 0, len(rows))
	for _, m := range rows {
		points = append(points, ChartPoint{Date: m.Date, Source: m.Source, Data: m.Data})
	}
	return points
}
