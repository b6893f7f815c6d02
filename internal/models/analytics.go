package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is a half-open [Start, End) reporting window
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CustomerMetrics partitions the retailer's customers for a period
type CustomerMetrics struct {
	Total          int `json:"total"`
	New            int `json:"new"`
	Returning      int `json:"returning"`
	Dormant        int `json:"dormant"`
	ActiveInPeriod int `json:"active_in_period"`
}

// SchemeHealth counts enrollments by status as of period end
type SchemeHealth struct {
	Total  int                          `json:"total"`
	Counts map[EnrollmentStatus]int     `json:"counts"`
	Ratios map[EnrollmentStatus]float64 `json:"ratios"`
}

// PortfolioPoint is the cumulative position at the end of one bucket
type PortfolioPoint struct {
	BucketStart   time.Time                 `json:"bucket_start"`
	BucketEnd     time.Time                 `json:"bucket_end"`
	Contributions decimal.Decimal           `json:"contributions"`
	Grams         map[Karat]decimal.Decimal `json:"grams"`
	Value         *decimal.Decimal          `json:"value"` // nil when a held karat has no rate
}

// EfficiencyPoint is the realized conversion efficiency for one month
type EfficiencyPoint struct {
	Month      time.Time       `json:"month"`
	Invested   decimal.Decimal `json:"invested"`
	Grams      decimal.Decimal `json:"grams"`
	Efficiency *float64        `json:"efficiency"` // percent; nil when undefined
}

// AnalyticsResult is the full analytics payload for a retailer and period
type AnalyticsResult struct {
	RetailerID       uuid.UUID                 `json:"retailer_id"`
	Period           Period                    `json:"period"`
	Granularity      string                    `json:"granularity"`
	TotalRevenue     decimal.Decimal           `json:"total_revenue"`
	RevenueByMetal   map[Karat]decimal.Decimal `json:"revenue_by_metal"`
	CustomerMetrics  CustomerMetrics           `json:"customer_metrics"`
	SchemeHealth     SchemeHealth              `json:"scheme_health"`
	PortfolioSeries  []PortfolioPoint          `json:"portfolio_series"`
	EfficiencySeries []EfficiencyPoint         `json:"efficiency_series"`
	XIRR             *float64                  `json:"xirr"`
}

// Diagnostic explains a degraded or missing metric
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
